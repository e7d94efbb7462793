//go:build !zos

package shrmem64

// Supported returns false on platforms other than z/OS.
func Supported() (bool, error) {
	return false, ErrNotSupported
}
