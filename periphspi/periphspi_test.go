//go:build linux

package periphspi

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"go.viam.com/spidev"
	"go.viam.com/spidev/spitest"
)

func newTestPort(t *testing.T) (*Port, *spitest.Conn) {
	t.Helper()
	fake := &spitest.Conn{}
	dev, err := spidev.NewFromConn(fake, spidev.Config{}, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return NewPort(dev), fake
}

func TestConnectAppliesSettings(t *testing.T) {
	port, fake := newTestPort(t)

	c, err := port.Connect(physic.MegaHertz, spi.Mode3|spi.NoCS, 8)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Duplex(), test.ShouldEqual, conn.Full)

	test.That(t, fake.MaxSpeedHz, test.ShouldEqual, uint32(1000000))
	test.That(t, fake.BitsPerWord, test.ShouldEqual, uint8(8))
	test.That(t, fake.Mode&uint32(spidev.CPHA), test.ShouldNotEqual, uint32(0))
	test.That(t, fake.Mode&uint32(spidev.CPOL), test.ShouldNotEqual, uint32(0))
	test.That(t, fake.Mode&uint32(spidev.NoCS), test.ShouldNotEqual, uint32(0))
	test.That(t, fake.Mode&uint32(spidev.LSBFirst), test.ShouldEqual, uint32(0))
}

func TestConnectRejectsHalfDuplex(t *testing.T) {
	port, _ := newTestPort(t)
	_, err := port.Connect(physic.MegaHertz, spi.Mode0|spi.HalfDuplex, 8)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLimitSpeedCapsConnect(t *testing.T) {
	port, fake := newTestPort(t)

	test.That(t, port.LimitSpeed(500*physic.KiloHertz), test.ShouldBeNil)
	_, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fake.MaxSpeedHz, test.ShouldEqual, uint32(500000))
}

func TestTx(t *testing.T) {
	port, fake := newTestPort(t)
	c, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	test.That(t, err, test.ShouldBeNil)

	t.Run("full duplex", func(t *testing.T) {
		w := []byte{1, 2, 3, 4}
		r := make([]byte, 4)
		test.That(t, c.Tx(w, r), test.ShouldBeNil)
		test.That(t, r, test.ShouldResemble, w)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		err := c.Tx([]byte{1, 2}, make([]byte, 3))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("write only", func(t *testing.T) {
		before := len(fake.Transfers)
		test.That(t, c.Tx([]byte{9, 8, 7}, nil), test.ShouldBeNil)
		xfer := fake.Transfers[len(fake.Transfers)-1]
		test.That(t, len(fake.Transfers), test.ShouldEqual, before+1)
		test.That(t, xfer.RxBuf, test.ShouldEqual, uint64(0))
	})

	t.Run("read only", func(t *testing.T) {
		fake.ReadFill = 0x5a
		r := make([]byte, 3)
		test.That(t, c.Tx(nil, r), test.ShouldBeNil)
		test.That(t, r, test.ShouldResemble, []byte{0x5a, 0x5a, 0x5a})
	})
}

func TestTxPackets(t *testing.T) {
	port, fake := newTestPort(t)
	c, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	test.That(t, err, test.ShouldBeNil)

	t.Run("word size override", func(t *testing.T) {
		pkts := []spi.Packet{
			{W: []byte{1, 2}, R: make([]byte, 2), BitsPerWord: 16},
			{W: []byte{3}},
		}
		test.That(t, c.TxPackets(pkts), test.ShouldBeNil)
		test.That(t, pkts[0].R, test.ShouldResemble, []byte{1, 2})
		n := len(fake.Transfers)
		test.That(t, fake.Transfers[n-2].BitsPerWord, test.ShouldEqual, uint8(16))
		test.That(t, fake.Transfers[n-1].BitsPerWord, test.ShouldEqual, uint8(0))
	})

	t.Run("keep cs unsupported", func(t *testing.T) {
		err := c.TxPackets([]spi.Packet{{W: []byte{1}, KeepCS: true}})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestPortClose(t *testing.T) {
	port, fake := newTestPort(t)
	test.That(t, port.Close(), test.ShouldBeNil)
	test.That(t, port.Close(), test.ShouldBeNil)
	test.That(t, fake.CloseCount, test.ShouldEqual, 1)
}
