// Package debug provides diagnostics logging for vercheck.
// Logging is only enabled when --debug (or VC_DEBUG) is set at startup.
// Logs go to ~/.vercheck/debug.log through a rotating writer; each launch
// starts a fresh file and keeps the previous runs as backups.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the name of the directory containing the log file.
	LogDirName = ".vercheck"

	defaultMaxSizeMB  = 5
	defaultMaxBackups = 3
)

// Options controls Init.
type Options struct {
	Enabled bool
	// Path overrides the default log location.
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu      sync.RWMutex
	enabled bool
	logger  = zap.NewNop()
	sink    *lumberjack.Logger

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
)

// Init initializes the debug logging system.
// If opts.Enabled is false, L returns a no-op logger and Log/Logf do nothing.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeSinkLocked()
	enabled = opts.Enabled
	if !opts.Enabled {
		logger = zap.NewNop()
		return nil
	}

	logPath := opts.Path
	if logPath == "" {
		p, err := getLogPath()
		if err != nil {
			return fmt.Errorf("determine log path: %w", err)
		}
		logPath = p
	}

	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}
	if _, err := os.Stat(logPath); err == nil {
		if err := w.Rotate(); err != nil {
			return fmt.Errorf("rotate log file: %w", err)
		}
	}
	sink = w

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	logger = zap.New(core)
	logger.Info(fmt.Sprintf("=== vercheck debug log started at %s ===", time.Now().Format(time.RFC3339)))

	return nil
}

// Close flushes and closes the log file if open.
// Safe to call even if logging is disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeSinkLocked()
}

func closeSinkLocked() {
	if sink == nil {
		return
	}
	_ = logger.Sync()
	_ = sink.Close()
	sink = nil
}

// L returns the diagnostics logger. It is never nil.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Arguments are handled in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Sugar().Debug(v...)
}

// Logf writes a formatted debug message if debug logging is enabled.
// Arguments are handled in the manner of fmt.Printf.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Sugar().Debugf(format, v...)
}

// Enabled returns whether debug logging is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns the default path of the debug log file.
func GetLogPath() (string, error) {
	return getLogPath()
}
