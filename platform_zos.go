//go:build zos

package shrmem64

import (
	"golang.org/x/sys/unix"
)

// Supported returns true if the process runs on z/OS and can issue IARV64.
func Supported() (bool, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return false, err
	}
	return unix.ByteSliceToString(uts.Sysname[:]) == "OS/390", nil
}
