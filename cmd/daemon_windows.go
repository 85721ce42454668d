//go:build windows

package cmd

import (
	"context"
	"log"
	"sync"

	"github.com/urfave/cli"
	"golang.org/x/sys/windows/svc"

	daemonpkg "github.com/cjliu20152/qiskit/internal/daemon"
	"github.com/cjliu20152/qiskit/internal/service"
	"github.com/cjliu20152/qiskit/pkg/logger"
)

// getDaemonAction returns the platform-specific daemon action. On
// Windows this detects service mode and routes logs to the Event Log.
func getDaemonAction() cli.ActionFunc {
	return daemonWindows
}

// getPlatformCommands returns Windows-specific CLI commands.
func getPlatformCommands() []cli.Command {
	return []cli.Command{
		serviceCommand(),
	}
}

// daemonWindows detects if running as a Windows service and uses the
// appropriate logger. When started by the SCM, logs go to the Event
// Log; a plain console start behaves like the Unix daemon.
func daemonWindows(ctx *cli.Context) error {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return err
	}

	if !isService {
		return daemon(ctx)
	}

	return runAsWindowsService()
}

// runAsWindowsService runs the daemon under SCM control with Event Log
// integration.
func runAsWindowsService() error {
	stdLogger := logger.NewStandardLogger(log.Default())

	eventLogger, err := logger.NewEventLogger(daemonpkg.DefaultServiceName)
	if err != nil {
		// Event Log source not registered or inaccessible, keep going
		// with console-only logging.
		return runServiceWithLogger(stdLogger)
	}
	defer eventLogger.Close()

	multiLogger := logger.NewMultiLogger(stdLogger, eventLogger)
	return runServiceWithLogger(multiLogger)
}

// runServiceWithLogger runs the Windows service handler with the given
// logger. svc.Run blocks until the service stops.
func runServiceWithLogger(log logger.Logger) error {
	runner := &serviceRunner{log: log}
	handler := service.NewWindowsHandlerWithLogger(runner, &eventLoggerAdapter{log: log})
	return svc.Run(daemonpkg.DefaultServiceName, handler)
}

// serviceRunner adapts the daemon components to the service handler's
// runner contract. Start blocks until the context is canceled or the
// server fails.
type serviceRunner struct {
	log logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func (r *serviceRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return daemonpkg.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	c, err := initDaemonComponents(ctx, r.log)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Server.Start(ctx)
}

func (r *serviceRunner) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return daemonpkg.ErrNotRunning
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

func (r *serviceRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// eventLoggerAdapter exposes a format logger through the event logger
// contract the service handler expects.
type eventLoggerAdapter struct {
	log logger.Logger
}

func (a *eventLoggerAdapter) Info(msg string) error {
	a.log.Info("%s", msg)
	return nil
}

func (a *eventLoggerAdapter) Warning(msg string) error {
	a.log.Warning("%s", msg)
	return nil
}

func (a *eventLoggerAdapter) Error(msg string) error {
	a.log.Error("%s", msg)
	return nil
}

func (a *eventLoggerAdapter) Close() error {
	return nil
}

var _ service.RunnerInterface = (*serviceRunner)(nil)
var _ service.EventLogger = (*eventLoggerAdapter)(nil)
