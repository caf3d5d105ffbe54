package settings

import (
	"strconv"
	"strings"

	appErrors "vercheck/internal/errors"

	"go.uber.org/zap"
)

// Option configures a Store or Manager.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the diagnostics logger. Field-level parse failures are
// reported here instead of being returned to the caller.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// rawField is a field value as read from a backend, before interpretation.
type rawField struct {
	value   string
	present bool
}

// decodeFields turns raw field values into Settings. It never fails: each
// field that is missing or unreadable takes its default.
func decodeFields(enabled, lastCheck rawField, logger *zap.Logger) Settings {
	s := Defaults()

	if enabled.present {
		v, err := strconv.ParseBool(strings.TrimSpace(enabled.value))
		if err != nil {
			logger.Warn("ignoring unreadable settings field",
				zap.String("node", NodeName),
				zap.String("field", FieldAutomaticCheckEnabled),
				zap.Error(appErrors.Newf(appErrors.CodeSettingsParse, err, "parse %s", FieldAutomaticCheckEnabled)))
		} else {
			s.AutomaticCheckEnabled = v
		}
	}

	if lastCheck.present && strings.TrimSpace(lastCheck.value) != "" {
		t, err := parseTimestamp(strings.TrimSpace(lastCheck.value))
		if err != nil {
			logger.Warn("ignoring unreadable settings field",
				zap.String("node", NodeName),
				zap.String("field", FieldLastSuccessfulCheck),
				zap.Error(appErrors.Newf(appErrors.CodeSettingsParse, err, "parse %s", FieldLastSuccessfulCheck)))
		} else {
			s.LastSuccessfulCheck = t
		}
	}

	return s
}

// encodeFields returns the field/value pairs to persist, in write order.
// An absent last check is omitted.
func encodeFields(s Settings) [][2]string {
	fields := [][2]string{
		{FieldAutomaticCheckEnabled, strconv.FormatBool(s.AutomaticCheckEnabled)},
	}
	if s.HasLastCheck() {
		fields = append(fields, [2]string{FieldLastSuccessfulCheck, formatTimestamp(s.LastSuccessfulCheck)})
	}
	return fields
}
