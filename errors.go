//go:build linux

package spidev

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrDeviceNotFound is returned by Open when the device node does not exist.
// No file is opened and no ioctl is attempted in that case. Match it with
// errors.Is.
var ErrDeviceNotFound = errors.New("SPI device does not exist")

// IoctlError is a get, set, or transfer ioctl the kernel rejected. It keeps
// the raw errno so callers can tell a permission problem from a bad argument.
type IoctlError struct {
	// Request is the encoded request number that failed.
	Request uint32
	// Errno is the system error the syscall returned.
	Errno unix.Errno
}

func (e *IoctlError) Error() string {
	return fmt.Sprintf("spidev ioctl 0x%08x: %v", e.Request, e.Errno)
}

// Unwrap exposes the errno, so errors.Is(err, unix.EACCES) works.
func (e *IoctlError) Unwrap() error {
	return e.Errno
}
