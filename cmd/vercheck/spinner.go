package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const defaultSpinnerInterval = 120 * time.Millisecond

// checkSpinner draws a one-line progress indicator while a manual check is
// in flight. Nothing is drawn if the check finishes within delay.
type checkSpinner struct {
	writer        io.Writer
	delay         time.Duration
	frameInterval time.Duration
	frames        []rune

	messages chan string
	stopCh   chan struct{}
	doneCh   chan struct{}
	once     sync.Once

	mu       sync.Mutex
	frameIdx int
}

// newCheckSpinner returns nil when delay is negative; a nil spinner is a
// valid no-op.
func newCheckSpinner(w io.Writer, delay time.Duration, message string) *checkSpinner {
	if delay < 0 {
		return nil
	}
	return newCustomCheckSpinner(w, delay, defaultSpinnerInterval, message)
}

func newCustomCheckSpinner(w io.Writer, delay, frameInterval time.Duration, message string) *checkSpinner {
	if w == nil {
		w = io.Discard
	}
	sp := &checkSpinner{
		writer:        w,
		delay:         delay,
		frameInterval: frameInterval,
		frames:        []rune{'|', '/', '-', '\\'},
		messages:      make(chan string, 8),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	go sp.loop(message)
	return sp
}

// Message replaces the text shown next to the spinner.
func (s *checkSpinner) Message(msg string) {
	if s == nil {
		return
	}
	select {
	case <-s.stopCh:
		return
	default:
	}
	select {
	case s.messages <- msg:
	default:
	}
}

// Stop clears the line and waits for the drawing goroutine to exit.
func (s *checkSpinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *checkSpinner) loop(current string) {
	defer close(s.doneCh)

	var delayCh <-chan time.Time
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		delayCh = timer.C
	}

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	visible := s.delay == 0
	if visible {
		s.render(current)
	}

	for {
		select {
		case <-s.stopCh:
			if visible {
				s.clearLine()
			}
			return
		case msg := <-s.messages:
			current = msg
			if visible {
				s.render(current)
			}
		case <-ticker.C:
			if visible {
				s.render(current)
			}
		case <-delayCh:
			delayCh = nil
			visible = true
			s.render(current)
		}
	}
}

func (s *checkSpinner) render(msg string) {
	frame := s.nextFrame()
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "Checking for updates..."
	}
	_, _ = fmt.Fprintf(s.writer, "\r\033[2K%c %s", frame, msg)
}

func (s *checkSpinner) clearLine() {
	_, _ = fmt.Fprint(s.writer, "\r\033[2K")
}

func (s *checkSpinner) nextFrame() rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.frames[s.frameIdx%len(s.frames)]
	s.frameIdx++
	return frame
}
