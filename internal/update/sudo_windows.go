//go:build windows

package update

// NeedsElevation always returns false on Windows; the installer handles
// binary replacement there.
func NeedsElevation(string) bool { return false }

// ReExecWithSudo is not supported on Windows.
func ReExecWithSudo() error { return nil }
