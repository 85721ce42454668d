//go:build !windows

package server

import "os"

// setSocketPermissions restricts the socket to the owning user, so
// other users on the host cannot submit or cancel jobs.
func setSocketPermissions(path string) error {
	return os.Chmod(path, 0700)
}
