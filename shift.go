/*
Copyright 2024 Tim St. Pierre
Serial to parallel shift register wiring
*/

package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Unwired marks a controller line that has no shift register output.
const Unwired = -1

// ShiftLayout gives the shift register output (0-7) feeding each controller
// line. Data holds D4-D7, lowest first.
type ShiftLayout struct {
	E    int
	RS   int
	RW   int
	Data [4]int
}

// DefaultShiftLayout is the common 3 wire layout: Q0 enable, Q1 RS, Q2 RW,
// Q3-Q6 D4-D7.
var DefaultShiftLayout = ShiftLayout{
	E:    0,
	RS:   1,
	RW:   2,
	Data: [4]int{3, 4, 5, 6},
}

func (l *ShiftLayout) validate(enableRouted bool) error {
	used := map[int]string{}
	claim := func(name string, pos int) error {
		if pos < 0 || pos > 7 {
			return fmt.Errorf("shift layout %s output %d out of range", name, pos)
		}
		if other, ok := used[pos]; ok {
			return fmt.Errorf("shift layout %s and %s share output %d", name, other, pos)
		}
		used[pos] = name
		return nil
	}
	if err := claim("RS", l.RS); err != nil {
		return err
	}
	if enableRouted {
		if err := claim("E", l.E); err != nil {
			return err
		}
	}
	if l.RW != Unwired {
		if err := claim("RW", l.RW); err != nil {
			return err
		}
	}
	for i, pos := range l.Data {
		if err := claim(fmt.Sprintf("D%d", i+4), pos); err != nil {
			return err
		}
	}
	return nil
}

func bit(pos int) byte {
	return 1 << uint(pos)
}

// Shifter clocks one byte into a shift register, most significant bit first.
type Shifter interface {
	ShiftOut(word byte) error
}

// GPIOShifter bit-bangs a shift register on a data and a clock pin.
type GPIOShifter struct {
	Data  gpio.PinOut
	Clock gpio.PinOut
}

func (s *GPIOShifter) ShiftOut(word byte) error {
	var w pinWriter
	for i := 7; i >= 0; i-- {
		w.out(s.Data, gpio.Level((word>>uint(i))&0x01 == 0x01))
		w.out(s.Clock, gpio.High)
		w.out(s.Clock, gpio.Low)
	}
	return w.err
}

func (s *GPIOShifter) reset() error {
	if s.Data == nil || s.Clock == nil {
		return errors.New("gpio shifter needs data and clock pins")
	}
	var w pinWriter
	w.out(s.Data, gpio.Low)
	w.out(s.Clock, gpio.Low)
	return w.err
}

// SPIShifter feeds a shift register such as the 74HC595 from an SPI
// connection. The connection must be set up for 8 bit words, MSB first.
type SPIShifter struct {
	Conn conn.Conn
}

func (s *SPIShifter) ShiftOut(word byte) error {
	return s.Conn.Tx([]byte{word}, nil)
}

func (s *SPIShifter) reset() error {
	if s.Conn == nil {
		return errors.New("spi shifter needs a connection")
	}
	return nil
}

// ShiftRegister drives the controller through a serial in, parallel out
// register. Only 4 bit operation fits in the 8 outputs.
//
// Latch is the storage clock of latching registers, nil when the outputs
// follow the shift stage. E is a dedicated enable pin; when nil the enable
// line hangs off the register at Layout.E and is pulsed by shifting the
// word twice. A nil Layout means DefaultShiftLayout.
type ShiftRegister struct {
	Shifter Shifter
	Latch   gpio.PinOut
	E       gpio.PinOut
	Layout  *ShiftLayout
}

func (s *ShiftRegister) String() string {
	latch := "latched"
	if s.Latch == nil {
		latch = "unlatched"
	}
	enable := "shifted enable"
	if s.E != nil {
		enable = "enable pin"
	}
	return fmt.Sprintf("shift register %s, %s", latch, enable)
}

func (s *ShiftRegister) width() BitWidth {
	return Width4
}

func (s *ShiftRegister) layout() *ShiftLayout {
	if s.Layout == nil {
		return &DefaultShiftLayout
	}
	return s.Layout
}

func (s *ShiftRegister) setup() error {
	if s.Shifter == nil {
		return errors.New("shift register wiring needs a Shifter")
	}
	if err := s.layout().validate(s.E == nil); err != nil {
		return err
	}
	if r, ok := s.Shifter.(interface{ reset() error }); ok {
		if err := r.reset(); err != nil {
			return err
		}
	}
	var w pinWriter
	if s.Latch != nil {
		w.out(s.Latch, gpio.Low)
	}
	if s.E != nil {
		w.out(s.E, gpio.Low)
	}
	return w.err
}

func (s *ShiftRegister) transmit(clk Clock, value byte, mode Mode, width BitWidth) error {
	l := s.layout()
	var word byte
	if mode == ModeData {
		word |= bit(l.RS)
	}
	if s.E == nil {
		word |= bit(l.E)
	}
	// RW is driven high in the shifted word; layouts wanting it low leave it Unwired.
	if l.RW != Unwired {
		word |= bit(l.RW)
	}
	for i := 0; i < int(width) && i < len(l.Data); i++ {
		word |= ((value >> uint(i)) & 0x01) << uint(l.Data[i])
	}

	var w pinWriter
	w.check(s.Shifter.ShiftOut(word))
	s.latch(clk, &w)

	if s.E == nil {
		clk.Sleep(EnablePulse)
		word &^= bit(l.E)
		w.check(s.Shifter.ShiftOut(word))
		s.latch(clk, &w)
	} else {
		w.out(s.E, gpio.High)
		clk.Sleep(EnablePulse)
		w.out(s.E, gpio.Low)
	}
	clk.Sleep(CommandSettle)
	return w.err
}

func (s *ShiftRegister) latch(clk Clock, w *pinWriter) {
	if s.Latch == nil {
		return
	}
	w.out(s.Latch, gpio.Low)
	clk.Sleep(LatchPulse)
	w.out(s.Latch, gpio.High)
}

var _ Wiring = &ShiftRegister{}
