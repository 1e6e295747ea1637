/*
Copyright 2024 Tim St. Pierre
Ways of wiring the controller to the host
*/

package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Mode is the level of the register select line.
type Mode bool

const (
	ModeCommand Mode = false
	ModeData    Mode = true
)

func (m Mode) String() string {
	if m == ModeData {
		return "data"
	}
	return "command"
}

// BitWidth is the number of data lines used per transmission.
type BitWidth uint8

const (
	Width4 BitWidth = 4
	Width8 BitWidth = 8
)

func (w BitWidth) valid() bool {
	return w == Width4 || w == Width8
}

func (w BitWidth) mask() byte {
	if w == Width4 {
		return 0x0f
	}
	return 0xff
}

// Wiring is the electrical topology between host and controller. It is
// implemented by *Parallel, *ShiftRegister and *Callback only.
//
// transmit sends the width low bits of value with register select set for
// mode and produces exactly one enable pulse, followed by CommandSettle.
type Wiring interface {
	fmt.Stringer
	width() BitWidth
	setup() error
	transmit(clk Clock, value byte, mode Mode, width BitWidth) error
}

// pinWriter drives pins and keeps the first error returned.
type pinWriter struct {
	err error
}

func (w *pinWriter) out(p gpio.PinOut, l gpio.Level) {
	if err := p.Out(l); err != nil && w.err == nil {
		w.err = fmt.Errorf("%s: %w", p, err)
	}
}

func (w *pinWriter) check(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

// Parallel drives the controller pins directly from host GPIOs.
//
// Data lists D0-D7 for 8 bit operation or D4-D7 for 4 bit operation, lowest
// line first. RW may be nil when the line is tied to ground.
type Parallel struct {
	RS   gpio.PinOut
	RW   gpio.PinOut
	E    gpio.PinOut
	Data []gpio.PinOut
}

func (p *Parallel) String() string {
	return fmt.Sprintf("parallel %d-bit", len(p.Data))
}

func (p *Parallel) width() BitWidth {
	return BitWidth(len(p.Data))
}

func (p *Parallel) setup() error {
	if p.RS == nil || p.E == nil {
		return errors.New("parallel wiring needs RS and E pins")
	}
	if !p.width().valid() {
		return fmt.Errorf("parallel wiring needs 4 or 8 data pins, got %d", len(p.Data))
	}
	var w pinWriter
	for i, pin := range p.Data {
		if pin == nil {
			return fmt.Errorf("parallel wiring data pin %d is nil", i)
		}
		w.out(pin, gpio.Low)
	}
	w.out(p.RS, gpio.Low)
	if p.RW != nil {
		w.out(p.RW, gpio.Low)
	}
	w.out(p.E, gpio.Low)
	return w.err
}

func (p *Parallel) transmit(clk Clock, value byte, mode Mode, width BitWidth) error {
	var w pinWriter
	w.out(p.RS, gpio.Level(mode))
	if p.RW != nil {
		w.out(p.RW, gpio.Low)
	}
	for i := 0; i < int(width) && i < len(p.Data); i++ {
		w.out(p.Data[i], gpio.Level((value>>uint(i))&0x01 == 0x01))
	}
	w.out(p.E, gpio.Low)
	clk.Sleep(EnablePulse)
	w.out(p.E, gpio.High)
	clk.Sleep(EnablePulse)
	w.out(p.E, gpio.Low)
	clk.Sleep(CommandSettle)
	return w.err
}

// SendFunc transmits the width low bits of value. It must drive the data
// lines, set register select for mode, keep RW low and pulse enable high
// for more than 450ns before returning.
type SendFunc func(value byte, mode Mode, width BitWidth) error

// Callback hands every transmission to Send.
type Callback struct {
	Send  SendFunc
	Width BitWidth
	// Name shows up in the device String
	Name string
}

func (c *Callback) String() string {
	name := c.Name
	if name == "" {
		name = "callback"
	}
	return fmt.Sprintf("%s %d-bit", name, c.Width)
}

func (c *Callback) width() BitWidth {
	return c.Width
}

func (c *Callback) setup() error {
	if c.Send == nil {
		return errors.New("callback wiring needs a Send function")
	}
	if !c.Width.valid() {
		return fmt.Errorf("callback wiring width must be 4 or 8, got %d", c.Width)
	}
	return nil
}

func (c *Callback) transmit(clk Clock, value byte, mode Mode, width BitWidth) error {
	err := c.Send(value, mode, width)
	clk.Sleep(CommandSettle)
	return err
}

var (
	_ Wiring = &Parallel{}
	_ Wiring = &Callback{}
)
