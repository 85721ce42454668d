//go:build windows

package server

// setSocketPermissions is a no-op on Windows. Named pipe access is
// restricted through the pipe security descriptor instead.
func setSocketPermissions(path string) error {
	return nil
}
