//go:build linux

// Package spidev drives a Linux SPI character device (/dev/spidevB.D)
// through the spidev ioctl interface: mode, speed and word-size
// configuration plus blocking half- and full-duplex transfers, with large
// payloads split into 4096-byte kernel transactions.
//
// Every operation is a blocking syscall that completes before returning; the
// package adds no goroutines and no internal locking. A Device is therefore
// not safe for concurrent use: callers sharing one across goroutines must
// serialize access themselves, or interleaved multi-chunk transfers will
// corrupt each other's ordering on the bus.
package spidev

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/spidev/ioc"
)

// DevicePath returns the conventional device node path for a bus and chip
// select pair, e.g. DevicePath(0, 1) -> "/dev/spidev0.1".
func DevicePath(bus, chip int) string {
	return fmt.Sprintf("/dev/spidev%d.%d", bus, chip)
}

// Device is an open spidev node. It owns the underlying handle until Close.
type Device struct {
	conn   Conn
	path   string
	closed bool
	logger golog.Logger
}

// Open opens the spidev node at path read-write and applies cfg through the
// normal accessors. The path is checked for existence first: a missing node
// returns ErrDeviceNotFound before any ioctl is attempted, while permission
// or driver problems surface as a wrapped open error.
func Open(path string, cfg Config, logger golog.Logger) (*Device, error) {
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(ErrDeviceNotFound, path)
	}
	devFile, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open SPI device %s", path)
	}
	return newDevice(&fileConn{f: devFile}, path, cfg, logger)
}

// OpenBus opens /dev/spidev{bus}.{chip}.
func OpenBus(bus, chip int, cfg Config, logger golog.Logger) (*Device, error) {
	return Open(DevicePath(bus, chip), cfg, logger)
}

// NewFromConn builds a Device over an already open transport and applies
// cfg. It exists for tests and alternate transports; Open is the normal
// entry point.
func NewFromConn(conn Conn, cfg Config, logger golog.Logger) (*Device, error) {
	if err := cfg.Validate("conn"); err != nil {
		return nil, err
	}
	return newDevice(conn, "<conn>", cfg, logger)
}

func newDevice(conn Conn, path string, cfg Config, logger golog.Logger) (*Device, error) {
	dev := &Device{conn: conn, path: path, logger: logger}
	if err := dev.applyConfig(cfg); err != nil {
		return nil, multierr.Combine(err, dev.Close())
	}
	return dev, nil
}

// applyConfig pushes every supplied option to the driver, in declaration
// order. Supplied means non-nil; the current device state is never consulted
// to decide whether to apply one.
func (dev *Device) applyConfig(cfg Config) error {
	if cfg.MaxSpeedHz != nil {
		if err := dev.SetMaxSpeedHz(*cfg.MaxSpeedHz); err != nil {
			return err
		}
	}
	if cfg.BitsPerWord != nil {
		if err := dev.SetBitsPerWord(*cfg.BitsPerWord); err != nil {
			return err
		}
	}
	flags := []struct {
		value *bool
		set   func(bool) error
	}{
		{cfg.Phase, dev.SetPhase},
		{cfg.Polarity, dev.SetPolarity},
		{cfg.CSHigh, dev.SetCSHigh},
		{cfg.LSBFirst, dev.SetLSBFirst},
		{cfg.ThreeWire, dev.SetThreeWire},
		{cfg.Loop, dev.SetLoop},
		{cfg.NoCS, dev.SetNoCS},
		{cfg.Ready, dev.SetReady},
	}
	for _, flag := range flags {
		if flag.value == nil {
			continue
		}
		if err := flag.set(*flag.value); err != nil {
			return err
		}
	}
	dev.logger.Debugw("opened SPI device", "path", dev.path)
	return nil
}

// Path returns the device node path this device was opened on.
func (dev *Device) Path() string {
	return dev.path
}

// Close releases the device handle. Closing an already closed or never
// opened device is a no-op and returns nil.
func (dev *Device) Close() error {
	if dev.closed || dev.conn == nil {
		return nil
	}
	dev.closed = true
	return dev.conn.Close()
}

// ioctl issues one command against the device transport.
func (dev *Device) ioctl(cmd ioc.Command, arg unsafe.Pointer) error {
	if dev.closed || dev.conn == nil {
		return errors.New("use of closed SPI device")
	}
	return dev.conn.Ioctl(cmd.Op, arg)
}
