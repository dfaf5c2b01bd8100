//go:build linux

package spidev

import (
	"unsafe"

	"go.viam.com/spidev/ioc"
)

// iocMagic is the type byte shared by every spidev request
// (include/uapi/linux/spi/spidev.h).
const iocMagic = 'k'

// Mode is the spidev mode word. The low eight bits travel in the 8-bit mode
// requests; the dual/quad wire bits above them need the 32-bit pair.
type Mode uint32

// Mode bits, matching the SPI_* constants in the kernel headers.
const (
	CPHA      Mode = 1 << iota // clock phase: sample on trailing edge
	CPOL                       // clock polarity: idle high
	CSHigh                     // chip select is active high
	LSBFirst                   // least significant bit on the wire first
	ThreeWire                  // SI/SO share one line
	Loop                       // controller-internal loopback
	NoCS                       // single device on the bus, no chip select
	Ready                      // peripheral pulls low to pause
	TxDual                     // transmit on two wires
	TxQuad                     // transmit on four wires
	RxDual                     // receive on two wires
	RxQuad                     // receive on four wires
)

// The four classic CPOL/CPHA combinations.
const (
	Mode0 Mode = 0
	Mode1 Mode = CPHA
	Mode2 Mode = CPOL
	Mode3 Mode = CPOL | CPHA
)

// The spidev request table, computed once at initialization. The values
// match the SPI_IOC_* macro expansions bit for bit; RequestMessage is
// SPI_IOC_MESSAGE(1) and is reused for every chunk of every transfer.
var (
	RequestMessage = ioc.NewCommand(ioc.Write, iocMagic, 0, unsafe.Sizeof(Transfer{}))

	RequestReadMode  = ioc.NewCommand(ioc.Read, iocMagic, 1, 1)
	RequestWriteMode = ioc.NewCommand(ioc.Write, iocMagic, 1, 1)

	RequestReadLSBFirst  = ioc.NewCommand(ioc.Read, iocMagic, 2, 1)
	RequestWriteLSBFirst = ioc.NewCommand(ioc.Write, iocMagic, 2, 1)

	RequestReadBitsPerWord  = ioc.NewCommand(ioc.Read, iocMagic, 3, 1)
	RequestWriteBitsPerWord = ioc.NewCommand(ioc.Write, iocMagic, 3, 1)

	RequestReadMaxSpeedHz  = ioc.NewCommand(ioc.Read, iocMagic, 4, 4)
	RequestWriteMaxSpeedHz = ioc.NewCommand(ioc.Write, iocMagic, 4, 4)

	RequestReadMode32  = ioc.NewCommand(ioc.Read, iocMagic, 5, 4)
	RequestWriteMode32 = ioc.NewCommand(ioc.Write, iocMagic, 5, 4)
)
