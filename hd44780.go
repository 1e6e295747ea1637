/*
Copyright 2024 Tim St. Pierre
Controls an HD44780 character LCD
*/

package hd44780

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// backlight is implemented by wirings that can switch the backlight.
type backlight interface {
	SetBacklight(on bool) error
}

type pinBacklight struct {
	pin gpio.PinOut
}

func (b *pinBacklight) SetBacklight(on bool) error {
	return b.pin.Out(gpio.Level(on))
}

// Dev is an HD44780 controller behind one Wiring.
//
// Dev is not safe for concurrent use and owns its pins exclusively.
type Dev struct {
	w         Wiring
	clock     Clock
	backlight backlight
	function  functionFlags
	control   controlFlags
	entry     entryFlags
	lines     uint8
	cols      uint8
	opts      Opts
	err       error
}

func (d *Dev) String() string {
	return fmt.Sprintf("hd44780{%s}", d.w)
}

// New configures the wiring pins and runs the power on initialization for
// opts.Lines, opts.Cols and opts.Font.
//
// Use default options if nil is used.
func New(w Wiring, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := opts.withDefaults()
	return makeDev(w, nil, &o)
}

func makeDev(w Wiring, bl backlight, opts *Opts) (*Dev, error) {
	if w == nil {
		return nil, errors.New("hd44780: no wiring given")
	}
	if err := w.setup(); err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	if bl == nil && opts.Backlight != nil {
		bl = &pinBacklight{pin: opts.Backlight}
	}
	d := &Dev{
		w:         w,
		clock:     opts.Clock,
		backlight: bl,
		function:  functionFlags{width: w.width()},
		opts:      *opts,
	}
	d.Begin(opts.Cols, opts.Lines, opts.Font)
	if d.err != nil {
		return nil, d.err
	}
	return d, nil
}

// Begin forces the controller into a known state, whatever it powered up
// in, following figures 23 and 24 of the datasheet. It is run by New and
// only needs calling again to change the line count or font.
//
// cols is informational. The 5x10 font is used only when lines is 1.
func (d *Dev) Begin(cols, lines uint8, font Font) {
	if lines == 0 {
		lines = 1
	}
	d.cols = cols
	d.lines = lines
	d.function.twoLine = lines > 1
	d.function.tallFont = font == Font5x10 && lines == 1

	log.WithFields(log.Fields{
		"wiring": d.w.String(),
		"cols":   cols,
		"lines":  lines,
		"font":   font,
	}).Info("Initializing display")

	d.clock.Sleep(PowerOnDelay)

	if d.function.width == Width4 {
		// The controller may be in 8 bit mode or half way through a
		// nibble pair, three 0x3 nibbles resynchronise both cases.
		d.send(0x03, ModeCommand, Width4)
		d.clock.Sleep(InitRetryDelay)
		d.send(0x03, ModeCommand, Width4)
		d.clock.Sleep(InitRetryDelay)
		d.send(0x03, ModeCommand, Width4)
		d.clock.Sleep(InitFinalDelay)
		d.send(0x02, ModeCommand, Width4)
	} else {
		d.writeFunctionSet()
		d.clock.Sleep(InitRetryDelay)
		d.writeFunctionSet()
		d.clock.Sleep(InitFinalDelay)
		d.writeFunctionSet()
	}

	// Lines and font can only be set now
	d.writeFunctionSet()

	d.control = controlFlags{display: true}
	d.writeDisplaySwitch()
	d.Clear()
	d.entry = entryFlags{leftToRight: true}
	d.writeEntryMode()
}

// Halt clears the display, then switches it and the backlight off.
func (d *Dev) Halt() error {
	d.Clear()
	d.NoDisplay()
	d.SetBacklight(false)
	return d.err
}

// Err returns the first error reported by the pins or bus, if any.
//
// The controller never reports failures, so the display keeps being driven
// after an error.
func (d *Dev) Err() error {
	return d.err
}

func (d *Dev) Cols() uint8 {
	return d.cols
}

func (d *Dev) Lines() uint8 {
	return d.lines
}

// SetBacklight switches the backlight if the wiring or opts provide one.
func (d *Dev) SetBacklight(on bool) {
	if d.backlight == nil {
		log.Debug("No backlight to switch")
		return
	}
	if err := d.backlight.SetBacklight(on); err != nil {
		d.fail(fmt.Errorf("hd44780: backlight: %w", err))
	}
}

func (d *Dev) Clear() {
	d.command(CMD_Clear_Display)
	d.clock.Sleep(ClearDelay)
}

func (d *Dev) Home() {
	d.command(CMD_Return_Home)
	d.clock.Sleep(ClearDelay)
}

// SetCursor moves the cursor to col on row, both counted from 0. A row past
// the last line lands on the last line.
func (d *Dev) SetCursor(col, row uint8) {
	last := d.lines - 1
	if last >= uint8(len(rowOffsets)) {
		last = uint8(len(rowOffsets)) - 1
	}
	if row > last {
		row = last
	}
	d.command(CMD_DDRAM_Set | (col + rowOffsets[row]))
}

func (d *Dev) Display() {
	d.control.display = true
	d.writeDisplaySwitch()
}

func (d *Dev) NoDisplay() {
	d.control.display = false
	d.writeDisplaySwitch()
}

// Cursor shows the underline cursor.
func (d *Dev) Cursor() {
	d.control.cursor = true
	d.writeDisplaySwitch()
}

func (d *Dev) NoCursor() {
	d.control.cursor = false
	d.writeDisplaySwitch()
}

// Blink blinks the cell under the cursor.
func (d *Dev) Blink() {
	d.control.blink = true
	d.writeDisplaySwitch()
}

func (d *Dev) NoBlink() {
	d.control.blink = false
	d.writeDisplaySwitch()
}

// ScrollDisplayLeft shifts the whole display one cell, leaving DDRAM as is.
func (d *Dev) ScrollDisplayLeft() {
	d.command(CMD_Cursor_Display_Shift | OPT_Display_Shift)
}

func (d *Dev) ScrollDisplayRight() {
	d.command(CMD_Cursor_Display_Shift | OPT_Display_Shift | OPT_Shift_Right)
}

// CursorShift moves the cursor one cell without shifting the display.
func (d *Dev) CursorShift(right bool) {
	option := byte(CMD_Cursor_Display_Shift)
	if right {
		option = option | OPT_Shift_Right
	}
	d.command(option)
}

func (d *Dev) LeftToRight() {
	d.entry.leftToRight = true
	d.writeEntryMode()
}

func (d *Dev) RightToLeft() {
	d.entry.leftToRight = false
	d.writeEntryMode()
}

// Autoscroll shifts the display on every write so the text seems to flow
// out of the cursor.
func (d *Dev) Autoscroll() {
	d.entry.autoscroll = true
	d.writeEntryMode()
}

func (d *Dev) NoAutoscroll() {
	d.entry.autoscroll = false
	d.writeEntryMode()
}

// CreateChar stores glyph in CGRAM slot location. Slots are 0-7, higher
// values wrap. Rows are top first, 5 low bits used.
//
// The controller is left addressing CGRAM; call SetCursor, Home or Clear
// before writing text again.
func (d *Dev) CreateChar(location uint8, glyph [8]byte) {
	location &= 0x07
	d.command(CMD_CGRAM_Set | (location << 3))
	for _, row := range glyph {
		d.WriteGlyph(row)
	}
}

// WriteGlyph writes one character code at the cursor. Codes 0-7 show the
// CreateChar glyphs.
func (d *Dev) WriteGlyph(c byte) int {
	d.write(c, ModeData)
	return 1
}

// Write sends buf as character codes, pausing CharDelay after each.
func (d *Dev) Write(buf []byte) (int, error) {
	for _, c := range buf {
		d.WriteGlyph(c)
		if d.opts.CharDelay > 0 {
			d.clock.Sleep(d.opts.CharDelay)
		}
	}
	return len(buf), d.err
}

func (d *Dev) WriteString(s string) (int, error) {
	return d.Write([]byte(s))
}

// Command sends a raw instruction byte.
func (d *Dev) Command(value byte) {
	d.command(value)
}

func (d *Dev) writeFunctionSet() {
	d.command(d.function.encode())
}

func (d *Dev) writeDisplaySwitch() {
	d.command(d.control.encode())
}

func (d *Dev) writeEntryMode() {
	d.command(d.entry.encode())
}

func (d *Dev) command(data byte) {
	d.write(data, ModeCommand)
}

func (d *Dev) write(data byte, mode Mode) {
	log.Debugf("Writing %s %08b %#02x", mode, data, data)
	if d.function.width == Width8 {
		d.send(data, mode, Width8)
		return
	}
	d.send(data>>4, mode, Width4)
	d.send(data&0x0f, mode, Width4)
}

func (d *Dev) send(value byte, mode Mode, width BitWidth) {
	if err := d.w.transmit(d.clock, value&width.mask(), mode, width); err != nil {
		d.fail(fmt.Errorf("hd44780: %w", err))
	}
}

func (d *Dev) fail(err error) {
	if d.err != nil {
		return
	}
	d.err = err
	log.WithError(err).Warn("Display I/O failed")
}

var (
	_ conn.Resource = &Dev{}
	_ io.Writer     = &Dev{}
)
