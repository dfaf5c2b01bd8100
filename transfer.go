//go:build linux

package spidev

import (
	"runtime"
	"unsafe"
)

// ChunkSize is the largest payload handed to the kernel in one message
// ioctl. Larger buffers are split into consecutive transactions of at most
// this many bytes.
const ChunkSize = 4096

// Transfer is the kernel's struct spi_ioc_transfer: two 64-bit buffer
// addresses, a 32-bit length, per-call overrides, and a trailing pad. One is
// built per chunk immediately before the message ioctl and discarded after;
// it never outlives the call. Field order and widths must match the kernel
// layout exactly.
type Transfer struct {
	TxBuf       uint64
	RxBuf       uint64
	Len         uint32
	SpeedHz     uint32
	DelayUsecs  uint16
	BitsPerWord uint8
	CSChange    uint8
	TxNBits     uint8
	RxNBits     uint8
	Pad         uint16
}

// Options are per-call overrides for a single transfer. Zero values mean
// "use the device's persistent setting", mirroring the kernel's sentinel
// semantics.
type Options struct {
	// SpeedHz temporarily overrides the bus speed.
	SpeedHz uint32
	// BitsPerWord temporarily overrides the word size.
	BitsPerWord uint8
	// DelayUsecs is how long to wait after the last bit before deselecting
	// the chip.
	DelayUsecs uint16
}

// Write performs a half-duplex write of data. Nothing is captured from the
// bus. A chunk failure aborts the remaining chunks; bytes already clocked
// out by earlier chunks are not undone.
func (dev *Device) Write(data []byte, opts Options) error {
	return dev.message(data, nil, opts)
}

// Read performs a half-duplex read of n bytes. The controller clocks out
// zeros while reading.
func (dev *Device) Read(n int, opts Options) ([]byte, error) {
	rx := make([]byte, n)
	if err := dev.message(nil, rx, opts); err != nil {
		return nil, err
	}
	return rx, nil
}

// Transfer performs a full-duplex transfer: every byte of data is clocked
// out while one byte is clocked in. The result has the same length as data.
func (dev *Device) Transfer(data []byte, opts Options) ([]byte, error) {
	rx := make([]byte, len(data))
	if err := dev.message(data, rx, opts); err != nil {
		return nil, err
	}
	return rx, nil
}

// message runs one logical transfer as a strictly ordered sequence of
// message ioctls of at most ChunkSize bytes each; a chunk's ioctl completes
// before the next descriptor is built. tx may be nil for a pure read and rx
// nil for a pure write; when both are set they have the same length.
// Received chunks land at their offsets in rx, so the concatenated result is
// in chunk order. A zero-length transfer issues no ioctl at all.
func (dev *Device) message(tx, rx []byte, opts Options) error {
	n := len(tx)
	if n == 0 {
		n = len(rx)
	}
	if n == 0 {
		return nil
	}
	chunks := 0
	for off := 0; off < n; off += ChunkSize {
		end := off + ChunkSize
		if end > n {
			end = n
		}
		xfer := Transfer{
			Len:         uint32(end - off),
			SpeedHz:     opts.SpeedHz,
			DelayUsecs:  opts.DelayUsecs,
			BitsPerWord: opts.BitsPerWord,
		}
		if tx != nil {
			xfer.TxBuf = uint64(uintptr(unsafe.Pointer(&tx[off])))
		}
		if rx != nil {
			xfer.RxBuf = uint64(uintptr(unsafe.Pointer(&rx[off])))
		}
		err := dev.ioctl(RequestMessage, unsafe.Pointer(&xfer))
		// The descriptor carries raw addresses, so the slices must stay
		// reachable until the syscall returns.
		runtime.KeepAlive(tx)
		runtime.KeepAlive(rx)
		if err != nil {
			return err
		}
		chunks++
	}
	if chunks > 1 {
		dev.logger.Debugw("chunked SPI transfer", "bytes", n, "chunks", chunks)
	}
	return nil
}
