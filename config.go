//go:build linux

package spidev

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Config is the set of options applied when a device is opened. Nil fields
// leave the driver's current setting alone; every supplied field is applied
// unconditionally through the matching accessor, in the order the fields are
// declared here.
type Config struct {
	MaxSpeedHz  *uint32 `json:"max_speed_hz,omitempty"`
	BitsPerWord *uint8  `json:"bits_per_word,omitempty"`
	Phase       *bool   `json:"phase,omitempty"`
	Polarity    *bool   `json:"polarity,omitempty"`
	CSHigh      *bool   `json:"cs_high,omitempty"`
	LSBFirst    *bool   `json:"lsb_first,omitempty"`
	ThreeWire   *bool   `json:"three_wire,omitempty"`
	Loop        *bool   `json:"loop,omitempty"`
	NoCS        *bool   `json:"no_cs,omitempty"`
	Ready       *bool   `json:"ready,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.MaxSpeedHz != nil && *cfg.MaxSpeedHz == 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_speed_hz must be nonzero"))
	}
	if cfg.BitsPerWord != nil && *cfg.BitsPerWord > 32 {
		return goutils.NewConfigValidationError(path, errors.New("bits_per_word cannot be higher than 32"))
	}
	return nil
}
