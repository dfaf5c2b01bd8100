//go:build linux

// Package periphspi exposes a spidev.Device through the periph.io conn/v3
// SPI interfaces, so device drivers written against periph can run on top of
// this implementation.
package periphspi

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"go.viam.com/spidev"
)

// Port adapts an open device to spi.PortCloser. It takes ownership of the
// device: closing the port closes the device.
type Port struct {
	dev     *spidev.Device
	maxFreq physic.Frequency
}

// NewPort wraps an open device.
func NewPort(dev *spidev.Device) *Port {
	return &Port{dev: dev}
}

// String implements spi.Port.
func (p *Port) String() string {
	return fmt.Sprintf("spidev(%s)", p.dev.Path())
}

// Close implements spi.PortCloser.
func (p *Port) Close() error {
	return p.dev.Close()
}

// LimitSpeed caps the frequency any later Connect may apply.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return errors.Errorf("periphspi: invalid speed limit %s", f)
	}
	p.maxFreq = f
	return nil
}

// Connect applies the requested frequency, mode, and word size to the
// underlying device and returns a connection for transfers.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if f < 0 {
		return nil, errors.Errorf("periphspi: invalid frequency %s", f)
	}
	if mode&spi.HalfDuplex != 0 {
		return nil, errors.New("periphspi: half-duplex mode is not supported")
	}
	if bits < 0 || bits > 32 {
		return nil, errors.Errorf("periphspi: invalid bits per word %d", bits)
	}
	if p.maxFreq != 0 && (f == 0 || f > p.maxFreq) {
		f = p.maxFreq
	}
	if f != 0 {
		if err := p.dev.SetMaxSpeedHz(uint32(f / physic.Hertz)); err != nil {
			return nil, err
		}
	}
	if err := p.dev.SetPhase(mode&spi.Mode(spidev.CPHA) != 0); err != nil {
		return nil, err
	}
	if err := p.dev.SetPolarity(mode&spi.Mode(spidev.CPOL) != 0); err != nil {
		return nil, err
	}
	if err := p.dev.SetNoCS(mode&spi.NoCS != 0); err != nil {
		return nil, err
	}
	if err := p.dev.SetLSBFirst(mode&spi.LSBFirst != 0); err != nil {
		return nil, err
	}
	if bits != 0 {
		if err := p.dev.SetBitsPerWord(uint8(bits)); err != nil {
			return nil, err
		}
	}
	return &busConn{p: p}, nil
}

// busConn is one configured connection over the port.
type busConn struct {
	p *Port
}

// String implements conn.Conn.
func (c *busConn) String() string {
	return c.p.String()
}

// Duplex implements conn.Conn.
func (c *busConn) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn: full duplex when both buffers are set, half
// duplex otherwise. w and r must be the same length when both are given.
func (c *busConn) Tx(w, r []byte) error {
	switch {
	case len(w) != 0 && len(r) != 0:
		if len(w) != len(r) {
			return errors.Errorf("periphspi: w and r must be the same length, got %d and %d", len(w), len(r))
		}
		rx, err := c.p.dev.Transfer(w, spidev.Options{})
		if err != nil {
			return err
		}
		copy(r, rx)
		return nil
	case len(w) != 0:
		return c.p.dev.Write(w, spidev.Options{})
	case len(r) != 0:
		rx, err := c.p.dev.Read(len(r), spidev.Options{})
		if err != nil {
			return err
		}
		copy(r, rx)
		return nil
	}
	return nil
}

// TxPackets implements spi.Conn. Each packet is one transfer; KeepCS is not
// supported because the chunking engine always releases chip select between
// kernel transactions.
func (c *busConn) TxPackets(pkts []spi.Packet) error {
	for i, pkt := range pkts {
		if pkt.KeepCS {
			return errors.Errorf("periphspi: packet %d: KeepCS is not supported", i)
		}
		opts := spidev.Options{BitsPerWord: pkt.BitsPerWord}
		switch {
		case len(pkt.W) != 0 && len(pkt.R) != 0:
			if len(pkt.W) != len(pkt.R) {
				return errors.Errorf("periphspi: packet %d: W and R must be the same length", i)
			}
			rx, err := c.p.dev.Transfer(pkt.W, opts)
			if err != nil {
				return err
			}
			copy(pkt.R, rx)
		case len(pkt.W) != 0:
			if err := c.p.dev.Write(pkt.W, opts); err != nil {
				return err
			}
		case len(pkt.R) != 0:
			rx, err := c.p.dev.Read(len(pkt.R), opts)
			if err != nil {
				return err
			}
			copy(pkt.R, rx)
		}
	}
	return nil
}

var (
	_ = spi.PortCloser(&Port{})
	_ = spi.Conn(&busConn{})
)
