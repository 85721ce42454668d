//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc/eventlog"

	daemonpkg "github.com/cjliu20152/qiskit/internal/daemon"
	"github.com/cjliu20152/qiskit/internal/service"
)

// ErrRequiresAdmin is returned when an operation requires administrator privileges.
var ErrRequiresAdmin = errors.New("this operation requires administrator privileges")

// Dependency injection variables for testing. These allow tests to
// mock service manager operations without Windows API calls.
var (
	isAdminFunc   = isAdmin
	openSCManager = service.OpenSCManager

	serviceManagerInstallFunc   func(serviceName, displayName, exePath string, startType uint32) error
	serviceManagerUninstallFunc func(serviceName string) error
	serviceManagerStatusFunc    func(serviceName string) (uint32, error)
)

// isAdmin checks if the current process token belongs to the
// BUILTIN\Administrators group.
func isAdmin() bool {
	var sid *windows.SID

	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	token := windows.Token(0)
	isMember, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return isMember
}

// serviceCommand returns the Windows service management command.
func serviceCommand() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "Manage the qiskitd Windows service",
		Subcommands: []cli.Command{
			{
				Name:   "install",
				Usage:  "Install qiskitd as a Windows service",
				Action: serviceInstall,
			},
			{
				Name:   "uninstall",
				Usage:  "Remove the qiskitd Windows service",
				Action: serviceUninstall,
			},
			{
				Name:   "start",
				Usage:  "Start the qiskitd Windows service",
				Action: serviceStart,
			},
			{
				Name:   "stop",
				Usage:  "Stop the qiskitd Windows service",
				Action: serviceStop,
			},
			{
				Name:   "status",
				Usage:  "Show the current status of the qiskitd Windows service",
				Action: serviceStatus,
			},
		},
	}
}

func requireAdmin() error {
	if !isAdminFunc() {
		return ErrRequiresAdmin
	}
	return nil
}

// getServiceManager opens the SCM and creates a ServiceManager. The
// caller is responsible for closing scm when done.
func getServiceManager() (*service.ServiceManager, service.SCManagerInterface, error) {
	scm, err := openSCManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to service control manager: %w", err)
	}
	return service.NewServiceManager(scm), scm, nil
}

func serviceInstall(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	if serviceManagerInstallFunc != nil {
		return serviceManagerInstallFunc(
			daemonpkg.DefaultServiceName,
			daemonpkg.DefaultDisplayName,
			exePath,
			service.StartTypeAutomatic,
		)
	}

	mgr, scm, err := getServiceManager()
	if err != nil {
		return err
	}
	defer func() {
		if scm != nil {
			scm.Close()
		}
	}()

	err = mgr.Install(
		daemonpkg.DefaultServiceName,
		daemonpkg.DefaultDisplayName,
		exePath,
		service.StartTypeAutomatic,
	)
	if err != nil {
		if errors.Is(err, service.ErrServiceExists) {
			return fmt.Errorf("service '%s' is already installed", daemonpkg.DefaultServiceName)
		}
		return fmt.Errorf("failed to install service: %w", err)
	}

	// Register the event source so service-mode logging can reach the
	// Windows Event Log.
	err = eventlog.InstallAsEventCreate(
		daemonpkg.DefaultServiceName,
		eventlog.Info|eventlog.Warning|eventlog.Error,
	)
	if err != nil {
		// Roll the service registration back, a service that cannot
		// log is worse than no service.
		_ = mgr.Uninstall(daemonpkg.DefaultServiceName)
		return fmt.Errorf("failed to register event source: %w", err)
	}

	fmt.Printf("Service '%s' installed successfully\n", daemonpkg.DefaultServiceName)
	return nil
}

func serviceUninstall(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	if serviceManagerUninstallFunc != nil {
		err := serviceManagerUninstallFunc(daemonpkg.DefaultServiceName)
		if err != nil {
			return err
		}
		fmt.Printf("Service '%s' uninstalled successfully\n", daemonpkg.DefaultServiceName)
		return nil
	}

	mgr, scm, err := getServiceManager()
	if err != nil {
		return err
	}
	defer func() {
		if scm != nil {
			scm.Close()
		}
	}()

	err = mgr.Uninstall(daemonpkg.DefaultServiceName)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			return fmt.Errorf("service '%s' is not installed", daemonpkg.DefaultServiceName)
		}
		return fmt.Errorf("failed to uninstall service: %w", err)
	}

	// Best-effort cleanup of the event source.
	_ = eventlog.Remove(daemonpkg.DefaultServiceName)

	fmt.Printf("Service '%s' uninstalled successfully\n", daemonpkg.DefaultServiceName)
	return nil
}

func serviceStart(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	mgr, scm, err := getServiceManager()
	if err != nil {
		return err
	}
	defer func() {
		if scm != nil {
			scm.Close()
		}
	}()

	err = mgr.Start(daemonpkg.DefaultServiceName)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			return fmt.Errorf("service '%s' is not installed", daemonpkg.DefaultServiceName)
		}
		if errors.Is(err, service.ErrServiceAlreadyRunning) {
			return fmt.Errorf("service '%s' is already running", daemonpkg.DefaultServiceName)
		}
		return fmt.Errorf("failed to start service: %w", err)
	}

	fmt.Printf("Service '%s' started successfully\n", daemonpkg.DefaultServiceName)
	return nil
}

func serviceStop(ctx *cli.Context) error {
	if err := requireAdmin(); err != nil {
		return err
	}

	mgr, scm, err := getServiceManager()
	if err != nil {
		return err
	}
	defer func() {
		if scm != nil {
			scm.Close()
		}
	}()

	err = mgr.Stop(daemonpkg.DefaultServiceName)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			return fmt.Errorf("service '%s' is not installed", daemonpkg.DefaultServiceName)
		}
		if errors.Is(err, service.ErrServiceNotRunning) {
			return fmt.Errorf("service '%s' is not running", daemonpkg.DefaultServiceName)
		}
		return fmt.Errorf("failed to stop service: %w", err)
	}

	fmt.Printf("Service '%s' stopped successfully\n", daemonpkg.DefaultServiceName)
	return nil
}

// serviceStatus does not require admin privileges.
func serviceStatus(ctx *cli.Context) error {
	if serviceManagerStatusFunc != nil {
		statusVal, err := serviceManagerStatusFunc(daemonpkg.DefaultServiceName)
		if err != nil {
			return err
		}
		status := service.ServiceStatus(statusVal)
		fmt.Printf("Service '%s': %s\n", daemonpkg.DefaultServiceName, status.String())
		return nil
	}

	mgr, scm, err := getServiceManager()
	if err != nil {
		return err
	}
	defer func() {
		if scm != nil {
			scm.Close()
		}
	}()

	status, err := mgr.Status(daemonpkg.DefaultServiceName)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			return fmt.Errorf("service '%s' is not installed", daemonpkg.DefaultServiceName)
		}
		return fmt.Errorf("failed to get service status: %w", err)
	}

	fmt.Printf("Service '%s': %s\n", daemonpkg.DefaultServiceName, status.String())
	return nil
}
