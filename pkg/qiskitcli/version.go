package qiskitcli

import (
	"fmt"
	"os"
)

// VersionCheckEnv suppresses version mismatch warnings when set to any
// non-empty value. Useful for scripts and CI.
const VersionCheckEnv = "QISKIT_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on stderr when the daemon version differs
// from the CLI build. It never blocks execution; a stale daemon still
// answers every method, just possibly with older semantics.
func (c *Client) CheckVersionMismatch(expectedVersion string) {
	if expectedVersion == "" {
		return
	}

	if os.Getenv(VersionCheckEnv) != "" {
		return
	}

	daemonVersion, err := c.GetDaemonVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not verify daemon version: %v\n", err)
		return
	}

	if daemonVersion.Version != expectedVersion {
		fmt.Fprintf(os.Stderr, "Warning: CLI version (%s) differs from daemon version (%s)\n",
			expectedVersion, daemonVersion.Version)
		fmt.Fprintf(os.Stderr, "Run 'qiskit stop-daemon' to restart the daemon with the new version.\n")
	}
}
