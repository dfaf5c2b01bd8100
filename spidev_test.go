//go:build linux

package spidev_test

import (
	"os"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/spidev"
	"go.viam.com/spidev/spitest"
)

func newTestDevice(t *testing.T, conn *spitest.Conn, cfg spidev.Config) *spidev.Device {
	t.Helper()
	dev, err := spidev.NewFromConn(conn, cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return dev
}

func boolPtr(v bool) *bool    { return &v }
func u8Ptr(v uint8) *uint8    { return &v }
func u32Ptr(v uint32) *uint32 { return &v }

func TestDevicePath(t *testing.T) {
	test.That(t, spidev.DevicePath(0, 0), test.ShouldEqual, "/dev/spidev0.0")
	test.That(t, spidev.DevicePath(1, 2), test.ShouldEqual, "/dev/spidev1.2")
}

func TestOpenDeviceNotFound(t *testing.T) {
	path := "/dev/spidev9.9"
	if _, err := os.Stat(path); err == nil {
		t.Skipf("%s exists on this machine", path)
	}
	dev, err := spidev.Open(path, spidev.Config{}, golog.NewTestLogger(t))
	test.That(t, dev, test.ShouldBeNil)
	test.That(t, errors.Is(err, spidev.ErrDeviceNotFound), test.ShouldBeTrue)
}

func TestConfigValidate(t *testing.T) {
	cfg := spidev.Config{MaxSpeedHz: u32Ptr(0)}
	test.That(t, cfg.Validate("spi"), test.ShouldNotBeNil)

	cfg = spidev.Config{BitsPerWord: u8Ptr(33)}
	test.That(t, cfg.Validate("spi"), test.ShouldNotBeNil)

	cfg = spidev.Config{MaxSpeedHz: u32Ptr(500000), BitsPerWord: u8Ptr(8)}
	test.That(t, cfg.Validate("spi"), test.ShouldBeNil)
}

func TestOpenAppliesConfigInOrder(t *testing.T) {
	conn := &spitest.Conn{}
	newTestDevice(t, conn, spidev.Config{
		MaxSpeedHz:  u32Ptr(500000),
		BitsPerWord: u8Ptr(8),
		Phase:       boolPtr(true),
		Loop:        boolPtr(true),
	})

	test.That(t, conn.MaxSpeedHz, test.ShouldEqual, uint32(500000))
	test.That(t, conn.BitsPerWord, test.ShouldEqual, uint8(8))
	test.That(t, conn.Mode&uint32(spidev.CPHA), test.ShouldNotEqual, uint32(0))
	test.That(t, conn.Mode&uint32(spidev.Loop), test.ShouldNotEqual, uint32(0))

	// Scalars first, then mode flags, each flag as read-modify-write.
	test.That(t, conn.Requests, test.ShouldResemble, []uint32{
		spidev.RequestWriteMaxSpeedHz.Op,
		spidev.RequestWriteBitsPerWord.Op,
		spidev.RequestReadMode.Op,
		spidev.RequestWriteMode.Op,
		spidev.RequestReadMode.Op,
		spidev.RequestWriteMode.Op,
	})
}

func TestOpenAppliesSuppliedFlagsUnconditionally(t *testing.T) {
	// A supplied false must clear the bit even when the device already has
	// it set; application is keyed on the option being present, not on the
	// device's current state.
	conn := &spitest.Conn{Mode: uint32(spidev.Loop | spidev.CPOL)}
	newTestDevice(t, conn, spidev.Config{Loop: boolPtr(false)})

	test.That(t, conn.Mode&uint32(spidev.Loop), test.ShouldEqual, uint32(0))
	test.That(t, conn.Mode&uint32(spidev.CPOL), test.ShouldNotEqual, uint32(0))
}

func TestOpenEmptyConfigIssuesNoIoctls(t *testing.T) {
	conn := &spitest.Conn{}
	newTestDevice(t, conn, spidev.Config{})
	test.That(t, conn.Requests, test.ShouldBeEmpty)
}

func TestCloseIdempotent(t *testing.T) {
	conn := &spitest.Conn{}
	dev := newTestDevice(t, conn, spidev.Config{})

	test.That(t, dev.Close(), test.ShouldBeNil)
	test.That(t, dev.Close(), test.ShouldBeNil)
	test.That(t, conn.CloseCount, test.ShouldEqual, 1)

	_, err := dev.Mode()
	test.That(t, err, test.ShouldNotBeNil)
	err = dev.Write([]byte{1}, spidev.Options{})
	test.That(t, err, test.ShouldNotBeNil)
}
