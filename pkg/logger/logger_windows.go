//go:build windows

package logger

import (
	"fmt"

	"golang.org/x/sys/windows/svc/eventlog"
)

// Event IDs for Windows Event Log entries.
const (
	EventIDInfo    uint32 = 1
	EventIDWarning uint32 = 2
	EventIDError   uint32 = 3
)

// EventLogger writes log messages to the Windows Event Log. The event
// source must be registered via eventlog.InstallAsEventCreate() before
// an EventLogger can be opened, which happens at service install time.
type EventLogger struct {
	log *eventlog.Log
}

// NewEventLogger opens the Event Log source with the given name, which
// is typically the service name. Returns an error if the source is not
// registered or cannot be opened.
func NewEventLogger(sourceName string) (*EventLogger, error) {
	elog, err := eventlog.Open(sourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &EventLogger{log: elog}, nil
}

func (e *EventLogger) Info(format string, args ...interface{}) {
	// Errors intentionally ignored, the service must keep running even
	// if logging fails.
	_ = e.log.Info(EventIDInfo, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Warning(format string, args ...interface{}) {
	_ = e.log.Warning(EventIDWarning, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Error(format string, args ...interface{}) {
	_ = e.log.Error(EventIDError, fmt.Sprintf(format, args...))
}

// Close releases the Event Log handle.
func (e *EventLogger) Close() error {
	if e.log != nil {
		return e.log.Close()
	}
	return nil
}

var _ Logger = (*EventLogger)(nil)
