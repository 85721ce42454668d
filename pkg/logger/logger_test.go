package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestStandardLoggerPrefixes(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewStandardLogger(log.New(buf, "", 0))

	l.Info("accepted job %s", "abc123")
	l.Warning("queue at %d%% capacity", 90)
	l.Error("backend %s offline", "sim1q")

	out := buf.String()
	for _, want := range []string{
		"[INFO] accepted job abc123",
		"[WARNING] queue at 90% capacity",
		"[ERROR] backend sim1q offline",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestStandardLoggerClose(t *testing.T) {
	l := NewStandardLogger(log.New(&bytes.Buffer{}, "", 0))
	if err := l.Close(); err != nil {
		t.Errorf("expected nil close error, got %v", err)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNopLogger()
	// Must not panic and Close must be nil.
	l.Info("ignored %d", 1)
	l.Warning("ignored")
	l.Error("ignored")
	if err := l.Close(); err != nil {
		t.Errorf("expected nil close error, got %v", err)
	}
}

func TestMockLoggerRecords(t *testing.T) {
	m := NewMockLogger()
	m.Info("info %d", 1)
	m.Warning("warn %d", 2)
	m.Error("err %d", 3)
	_ = m.Close()

	if len(m.InfoCalls) != 1 || m.InfoCalls[0] != "info 1" {
		t.Errorf("expected one info call 'info 1', got %v", m.InfoCalls)
	}
	if len(m.WarningCalls) != 1 || m.WarningCalls[0] != "warn 2" {
		t.Errorf("expected one warning call 'warn 2', got %v", m.WarningCalls)
	}
	if len(m.ErrorCalls) != 1 || m.ErrorCalls[0] != "err 3" {
		t.Errorf("expected one error call 'err 3', got %v", m.ErrorCalls)
	}
	if !m.CloseCalled {
		t.Error("expected CloseCalled to be true")
	}
}

// failCloser helps verify MultiLogger error aggregation.
type failCloser struct {
	NopLogger
	err error
}

func (f *failCloser) Close() error { return f.err }

func TestMultiLoggerFanout(t *testing.T) {
	a := NewMockLogger()
	b := NewMockLogger()
	m := NewMultiLogger(a, b)

	m.Info("hello %s", "world")

	if len(a.InfoCalls) != 1 || len(b.InfoCalls) != 1 {
		t.Fatalf("expected both backends to receive the message, got %d and %d",
			len(a.InfoCalls), len(b.InfoCalls))
	}
	if a.InfoCalls[0] != "hello world" {
		t.Errorf("expected 'hello world', got %q", a.InfoCalls[0])
	}
}

func TestMultiLoggerCloseReturnsFirstError(t *testing.T) {
	errBoom := errors.New("boom")
	second := NewMockLogger()
	m := NewMultiLogger(&failCloser{err: errBoom}, second)

	if err := m.Close(); err != errBoom {
		t.Errorf("expected first close error, got %v", err)
	}
	if !second.CloseCalled {
		t.Error("expected all backends to be closed")
	}
}
