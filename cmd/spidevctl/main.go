//go:build linux

// Package main is a small command to poke at an SPI bus from the shell:
// dump the device settings, run a full-duplex transfer, or self-test a
// looped-back bus.
package main

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/spidev"
)

var logger = golog.NewDevelopmentLogger("spidevctl")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Device   string `flag:"device,default=/dev/spidev0.0,usage=spidev node path"`
	SpeedHz  int    `flag:"speed,default=0,usage=max speed override in Hz"`
	Bits     int    `flag:"bits,default=0,usage=bits per word override"`
	Loopback bool   `flag:"loopback,usage=enable loopback mode and run a self test"`
	TxHex    string `flag:"tx,usage=hex bytes to transfer full duplex"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	var cfg spidev.Config
	if argsParsed.SpeedHz > 0 {
		speed := uint32(argsParsed.SpeedHz)
		cfg.MaxSpeedHz = &speed
	}
	if argsParsed.Bits > 0 {
		bits := uint8(argsParsed.Bits)
		cfg.BitsPerWord = &bits
	}
	if argsParsed.Loopback {
		loop := true
		cfg.Loop = &loop
	}

	dev, err := spidev.Open(argsParsed.Device, cfg, logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(dev.Close)

	if err := dumpSettings(dev, logger); err != nil {
		return err
	}

	if argsParsed.Loopback {
		return loopbackTest(dev, logger)
	}
	if argsParsed.TxHex != "" {
		data, err := hex.DecodeString(argsParsed.TxHex)
		if err != nil {
			return errors.Wrap(err, "bad -tx value")
		}
		rx, err := dev.Transfer(data, spidev.Options{})
		if err != nil {
			return err
		}
		logger.Infow("transfer complete",
			"tx", hex.EncodeToString(data),
			"rx", hex.EncodeToString(rx),
		)
	}
	return nil
}

func dumpSettings(dev *spidev.Device, logger golog.Logger) error {
	mode, err := dev.Mode32()
	if err != nil {
		return err
	}
	speed, err := dev.MaxSpeedHz()
	if err != nil {
		return err
	}
	bits, err := dev.BitsPerWord()
	if err != nil {
		return err
	}
	logger.Infow("device settings",
		"path", dev.Path(),
		"mode", uint32(mode),
		"max_speed_hz", speed,
		"bits_per_word", bits,
	)
	return nil
}

// loopbackTest round-trips a payload spanning a chunk boundary through the
// controller's internal loopback.
func loopbackTest(dev *spidev.Device, logger golog.Logger) error {
	payload := make([]byte, spidev.ChunkSize+1)
	for i := range payload {
		payload[i] = byte(i)
	}
	rx, err := dev.Transfer(payload, spidev.Options{})
	if err != nil {
		return err
	}
	if !bytes.Equal(rx, payload) {
		return errors.New("loopback mismatch; does the controller support loopback mode?")
	}
	logger.Infow("loopback ok", "bytes", len(payload))
	return nil
}
