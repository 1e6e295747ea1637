/*
Copyright 2024 Tim St. Pierre
Controls a character LCD through a PCF8574 I2C backpack
Thanks to Dave Cheney for figuring out the registers!
*/

package hd44780

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

const (
	// Backpack pins, as PCF8574 port bits
	EN        = 2
	WR        = 1
	RS        = 0
	D4        = 4
	D5        = 5
	D6        = 6
	D7        = 7
	BACKLIGHT = 3
)

// Backpack is a PCF8574 port expander wired to the controller in 4 bit
// mode. Its Send method is a SendFunc.
type Backpack struct {
	c               conn.Conn
	clock           Clock
	backlight_state bool
}

// NewBackpack returns a backpack talking over c. A nil clock uses
// SystemClock.
func NewBackpack(c conn.Conn, clock Clock) *Backpack {
	if clock == nil {
		clock = SystemClock
	}
	return &Backpack{c: c, clock: clock, backlight_state: true}
}

func (b *Backpack) String() string {
	return fmt.Sprintf("pcf8574{%s}", b.c)
}

// NewI2C returns a new device that communicates over I²C
//
// Use default options if nil is used.
func NewI2C(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, fmt.Errorf("hd44780 %x: %v", opts.I2CAddr, err)
	}
	o := opts.withDefaults()
	b := NewBackpack(&i2c.Dev{Bus: bus, Addr: addr}, o.Clock)
	w := &Callback{Send: b.Send, Width: Width4, Name: b.String()}
	return makeDev(w, b, &o)
}

// Send presents the low nibble of value on D4-D7 and pulses enable.
func (b *Backpack) Send(value byte, mode Mode, width BitWidth) error {
	if width != Width4 {
		return fmt.Errorf("pcf8574 backpack only wires 4 data lines, asked for %d", width)
	}
	var data byte
	data = pinInterpret(D4, data, value&0x01 == 0x01)
	data = pinInterpret(D5, data, (value>>1)&0x01 == 0x01)
	data = pinInterpret(D6, data, (value>>2)&0x01 == 0x01)
	data = pinInterpret(D7, data, (value>>3)&0x01 == 0x01)
	// Set the register selector to 1 if this is data
	data = pinInterpret(RS, data, mode == ModeData)
	return b.enable(data)
}

// SetBacklight switches the backlight transistor, leaving enable low.
func (b *Backpack) SetBacklight(on bool) error {
	b.backlight_state = on
	log.Debugf("pcf8574 backlight %t", on)
	return b.writeByte(pinInterpret(BACKLIGHT, 0x00, on))
}

func (b *Backpack) enable(data byte) error {
	// Determine if back light is on and insure it does not turn off or on
	data = pinInterpret(BACKLIGHT, data, b.backlight_state)
	if err := b.writeByte(data); err != nil {
		return err
	}
	b.clock.Sleep(EnablePulse)
	if err := b.writeByte(pinInterpret(EN, data, true)); err != nil {
		return err
	}
	b.clock.Sleep(EnablePulse)
	return b.writeByte(data)
}

func (b *Backpack) writeByte(data byte) error {
	return b.c.Tx([]byte{data}, nil)
}

func pinInterpret(pin, data byte, value bool) byte {
	if value {
		return data | 0x01<<pin
	}
	return data &^ (0x01 << pin)
}
