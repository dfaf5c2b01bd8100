//go:build linux

package spidev

import (
	"unsafe"

	"go.viam.com/spidev/ioc"
)

func (dev *Device) readUint8(cmd ioc.Command) (uint8, error) {
	var v uint8
	if err := dev.ioctl(cmd, unsafe.Pointer(&v)); err != nil {
		return 0, err
	}
	return v, nil
}

func (dev *Device) writeUint8(cmd ioc.Command, v uint8) error {
	return dev.ioctl(cmd, unsafe.Pointer(&v))
}

func (dev *Device) readUint32(cmd ioc.Command) (uint32, error) {
	var v uint32
	if err := dev.ioctl(cmd, unsafe.Pointer(&v)); err != nil {
		return 0, err
	}
	return v, nil
}

func (dev *Device) writeUint32(cmd ioc.Command, v uint32) error {
	return dev.ioctl(cmd, unsafe.Pointer(&v))
}

// Mode returns the low eight mode bits.
func (dev *Device) Mode() (Mode, error) {
	v, err := dev.readUint8(RequestReadMode)
	return Mode(v), err
}

// SetMode overwrites the low eight mode bits wholesale. Use the per-flag
// setters to change a single bit.
func (dev *Device) SetMode(m Mode) error {
	return dev.writeUint8(RequestWriteMode, uint8(m))
}

// Mode32 returns the full 32-bit mode word, including the dual/quad wire
// bits the 8-bit requests cannot carry.
func (dev *Device) Mode32() (Mode, error) {
	v, err := dev.readUint32(RequestReadMode32)
	return Mode(v), err
}

// SetMode32 overwrites the full 32-bit mode word.
func (dev *Device) SetMode32(m Mode) error {
	return dev.writeUint32(RequestWriteMode32, uint32(m))
}

// getModeField reports whether flag is set in the device's mode word.
// Exactly one read ioctl.
func (dev *Device) getModeField(flag Mode) (bool, error) {
	m, err := dev.Mode()
	if err != nil {
		return false, err
	}
	return m&flag != 0, nil
}

// setModeField reads the current mode word, flips just flag, and writes the
// result back. Unrelated bits are never disturbed. Exactly one read ioctl
// followed by one write ioctl.
func (dev *Device) setModeField(flag Mode, value bool) error {
	m, err := dev.Mode()
	if err != nil {
		return err
	}
	if value {
		m |= flag
	} else {
		m &^= flag
	}
	return dev.SetMode(m)
}

// Phase reports the clock phase bit: false samples at the leading clock
// edge, true at the trailing edge.
func (dev *Device) Phase() (bool, error) {
	return dev.getModeField(CPHA)
}

// SetPhase sets the clock phase bit.
func (dev *Device) SetPhase(v bool) error {
	return dev.setModeField(CPHA, v)
}

// Polarity reports the clock polarity bit: false idles the clock low, true
// idles it high.
func (dev *Device) Polarity() (bool, error) {
	return dev.getModeField(CPOL)
}

// SetPolarity sets the clock polarity bit.
func (dev *Device) SetPolarity(v bool) error {
	return dev.setModeField(CPOL, v)
}

// CSHigh reports whether chip select is active high.
func (dev *Device) CSHigh() (bool, error) {
	return dev.getModeField(CSHigh)
}

// SetCSHigh sets the chip select active level.
func (dev *Device) SetCSHigh(v bool) error {
	return dev.setModeField(CSHigh, v)
}

// LSBFirst reports the word bit order: false sends the most significant bit
// first, true the least significant.
func (dev *Device) LSBFirst() (bool, error) {
	return dev.getModeField(LSBFirst)
}

// SetLSBFirst sets the word bit order.
func (dev *Device) SetLSBFirst(v bool) error {
	return dev.setModeField(LSBFirst, v)
}

// ThreeWire reports whether data is read and written on a single shared
// line.
func (dev *Device) ThreeWire() (bool, error) {
	return dev.getModeField(ThreeWire)
}

// SetThreeWire sets 3-wire mode.
func (dev *Device) SetThreeWire(v bool) error {
	return dev.setModeField(ThreeWire, v)
}

// Loop reports whether the controller is in loopback mode.
func (dev *Device) Loop() (bool, error) {
	return dev.getModeField(Loop)
}

// SetLoop sets loopback mode.
func (dev *Device) SetLoop(v bool) error {
	return dev.setModeField(Loop, v)
}

// NoCS reports whether the chip select line is unused (single device bus).
func (dev *Device) NoCS() (bool, error) {
	return dev.getModeField(NoCS)
}

// SetNoCS sets the no-chip-select bit.
func (dev *Device) SetNoCS(v bool) error {
	return dev.setModeField(NoCS, v)
}

// Ready reports whether the peripheral may pull low to pause the bus.
func (dev *Device) Ready() (bool, error) {
	return dev.getModeField(Ready)
}

// SetReady sets the ready bit.
func (dev *Device) SetReady(v bool) error {
	return dev.setModeField(Ready, v)
}

// MaxSpeedHz returns the persistent bus speed ceiling in Hz. The controller
// cannot necessarily run at the exact value it accepted.
func (dev *Device) MaxSpeedHz() (uint32, error) {
	return dev.readUint32(RequestReadMaxSpeedHz)
}

// SetMaxSpeedHz sets the persistent bus speed ceiling. A single write ioctl.
func (dev *Device) SetMaxSpeedHz(hz uint32) error {
	return dev.writeUint32(RequestWriteMaxSpeedHz, hz)
}

// BitsPerWord returns the persistent word size; 0 means the 8-bit default.
func (dev *Device) BitsPerWord() (uint8, error) {
	return dev.readUint8(RequestReadBitsPerWord)
}

// SetBitsPerWord sets the persistent word size. A single write ioctl.
func (dev *Device) SetBitsPerWord(bits uint8) error {
	return dev.writeUint8(RequestWriteBitsPerWord, bits)
}
