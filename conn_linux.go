//go:build linux

package spidev

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Conn is the transport a Device issues its ioctls through. The production
// implementation wraps the spidev file descriptor; the spitest package
// provides an in-memory fake for tests.
type Conn interface {
	// Ioctl issues one blocking ioctl with a pointer-typed argument. It
	// returns only once the kernel driver has completed the transaction.
	Ioctl(req uint32, arg unsafe.Pointer) error

	// Close releases the transport.
	Close() error
}

// fileConn drives a real character device file descriptor.
type fileConn struct {
	f *os.File
}

func (c *fileConn) Ioctl(req uint32, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, c.f.Fd(), uintptr(req), uintptr(arg))
	if errno != 0 {
		return &IoctlError{Request: req, Errno: errno}
	}
	return nil
}

func (c *fileConn) Close() error {
	return c.f.Close()
}
