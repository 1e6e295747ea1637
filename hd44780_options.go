/*
Copyright 2024 Tim St. Pierre
Options for hd44780 character display
*/

package hd44780

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Font selects the character height. The 5x10 font is only honoured on
// single line displays.
type Font uint8

const (
	Font5x8 Font = iota
	Font5x10
)

func (f Font) String() string {
	if f == Font5x10 {
		return "5x10"
	}
	return "5x8"
}

type Opts struct {
	// The I²C slave address, only used by NewI2C
	I2CAddr uint16
	// How many lines does the display have
	Lines uint8
	// Columns are informational, nothing is clipped to them
	Cols uint8
	Font Font
	// Pause between characters written through Write
	CharDelay time.Duration
	// Clock performs every blocking delay. Nil uses time.Sleep.
	Clock Clock
	// Optional pin switching the backlight
	Backlight gpio.PinOut
}

var DefaultOpts = Opts{
	I2CAddr:   0x27,
	Lines:     2,
	Cols:      16,
	Font:      Font5x8,
	CharDelay: 1 * time.Millisecond,
}

// withDefaults fills the zero fields from DefaultOpts.
func (o Opts) withDefaults() Opts {
	if o.Lines == 0 {
		o.Lines = DefaultOpts.Lines
	}
	if o.Cols == 0 {
		o.Cols = DefaultOpts.Cols
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	return o
}

func (o *Opts) i2cAddr() (uint16, error) {
	switch o.I2CAddr {
	case 0:
		// Default address.
		return 0x27, nil
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27:
		return o.I2CAddr, nil
	default:
		return 0, errors.New("given address not supported by device")
	}
}
