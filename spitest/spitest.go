//go:build linux

// Package spitest provides an in-memory spidev transport for tests. The fake
// keeps the same per-device state a real spidev node does (mode word, speed,
// word size) and wires MISO to MOSI like a loopback rig, so transfer code can
// be exercised without hardware.
package spitest

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"go.viam.com/spidev"
)

// Conn is an injected spidev.Conn. Unset function fields fall back to the
// built-in device state.
type Conn struct {
	// Mode is the full 32-bit mode word. The 8-bit requests touch only its
	// low byte, like the real driver.
	Mode uint32
	// MaxSpeedHz and BitsPerWord mirror the driver's persistent settings.
	MaxSpeedHz  uint32
	BitsPerWord uint8
	// ReadFill is the byte a pure read receives, standing in for whatever
	// the peripheral drives on MISO.
	ReadFill byte

	// Requests records every request number issued, in order.
	Requests []uint32
	// Transfers records a copy of every message descriptor issued, in order.
	Transfers []spidev.Transfer
	// Written records a copy of each chunk's transmit payload, in order.
	Written [][]byte

	// IoctlFunc, if set, replaces the built-in ioctl handling.
	IoctlFunc func(req uint32, arg unsafe.Pointer) error
	// CloseFunc, if set, replaces the built-in Close handling.
	CloseFunc func() error

	// CloseCount is how many times Close has been called.
	CloseCount int
}

// Ioctl calls the injected IoctlFunc or the built-in fake device.
func (c *Conn) Ioctl(req uint32, arg unsafe.Pointer) error {
	c.Requests = append(c.Requests, req)
	if c.IoctlFunc != nil {
		return c.IoctlFunc(req, arg)
	}
	switch req {
	case spidev.RequestReadMode.Op:
		*(*uint8)(arg) = uint8(c.Mode)
	case spidev.RequestWriteMode.Op:
		c.Mode = c.Mode&^0xff | uint32(*(*uint8)(arg))
	case spidev.RequestReadMode32.Op:
		*(*uint32)(arg) = c.Mode
	case spidev.RequestWriteMode32.Op:
		c.Mode = *(*uint32)(arg)
	case spidev.RequestReadLSBFirst.Op:
		// The driver keeps this byte in sync with the LSB_FIRST mode bit.
		var v uint8
		if c.Mode&uint32(spidev.LSBFirst) != 0 {
			v = 1
		}
		*(*uint8)(arg) = v
	case spidev.RequestWriteLSBFirst.Op:
		if *(*uint8)(arg) != 0 {
			c.Mode |= uint32(spidev.LSBFirst)
		} else {
			c.Mode &^= uint32(spidev.LSBFirst)
		}
	case spidev.RequestReadBitsPerWord.Op:
		*(*uint8)(arg) = c.BitsPerWord
	case spidev.RequestWriteBitsPerWord.Op:
		c.BitsPerWord = *(*uint8)(arg)
	case spidev.RequestReadMaxSpeedHz.Op:
		*(*uint32)(arg) = c.MaxSpeedHz
	case spidev.RequestWriteMaxSpeedHz.Op:
		c.MaxSpeedHz = *(*uint32)(arg)
	case spidev.RequestMessage.Op:
		return c.message((*spidev.Transfer)(arg))
	default:
		return &spidev.IoctlError{Request: req, Errno: unix.EINVAL}
	}
	return nil
}

// message services one chunk descriptor the way a looped-back bus would: the
// receive buffer gets a copy of the transmit buffer, or ReadFill when
// nothing is transmitted.
func (c *Conn) message(xfer *spidev.Transfer) error {
	c.Transfers = append(c.Transfers, *xfer)

	// The descriptor carries raw addresses of slices still live in the
	// caller's frame, so reconstructing views over them is safe here.
	var tx, rx []byte
	if xfer.TxBuf != 0 {
		tx = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(xfer.TxBuf))), xfer.Len)
	}
	if xfer.RxBuf != 0 {
		rx = unsafe.Slice((*byte)(unsafe.Pointer(uintptr(xfer.RxBuf))), xfer.Len)
	}

	if tx != nil {
		chunk := make([]byte, len(tx))
		copy(chunk, tx)
		c.Written = append(c.Written, chunk)
	}

	switch {
	case rx == nil:
	case tx != nil:
		copy(rx, tx)
	default:
		for i := range rx {
			rx[i] = c.ReadFill
		}
	}
	return nil
}

// Close calls the injected CloseFunc or counts the close.
func (c *Conn) Close() error {
	c.CloseCount++
	if c.CloseFunc != nil {
		return c.CloseFunc()
	}
	return nil
}

// MessageCount returns how many message ioctls have been issued.
func (c *Conn) MessageCount() int {
	count := 0
	for _, req := range c.Requests {
		if req == spidev.RequestMessage.Op {
			count++
		}
	}
	return count
}
