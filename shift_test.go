package hd44780

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
)

type fakeShifter struct {
	rec   *recorder
	words []byte
}

func (s *fakeShifter) ShiftOut(word byte) error {
	s.words = append(s.words, word)
	s.rec.events = append(s.rec.events, event{pin: "SHIFT"})
	return nil
}

// pinOrder lists the pin names of the recorded events, delays left out.
func pinOrder(rec *recorder) []string {
	var out []string
	for _, e := range rec.events {
		if e.pin != "" {
			out = append(out, e.pin)
		}
	}
	return out
}

func newShiftDev(t *testing.T, latch, enable bool, layout *ShiftLayout) (*Dev, *fakeShifter, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := &fakeShifter{rec: rec}
	w := &ShiftRegister{Shifter: s, Layout: layout}
	if latch {
		w.Latch = rec.pin("LATCH")
	}
	if enable {
		w.E = rec.pin("E")
	}
	d, err := New(w, &Opts{Lines: 2, Clock: rec})
	require.NoError(t, err)
	s.words = nil
	rec.events = nil
	return d, s, rec
}

func TestShiftLatchOncePerNibble(t *testing.T) {
	d, s, rec := newShiftDev(t, true, true, nil)

	d.Command(0x28)

	// RW output is set on every word of the default layout
	assert.Equal(t, []byte{0x14, 0x44}, s.words)
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High, gpio.Low, gpio.High}, rec.writes("LATCH"))
	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}, rec.writes("E"))
	assert.Equal(t, []string{
		"SHIFT", "LATCH", "LATCH", "E", "E",
		"SHIFT", "LATCH", "LATCH", "E", "E",
	}, pinOrder(rec))
	assert.Equal(t, CommandSettle, rec.sleeps()[len(rec.sleeps())-1])
}

func TestShiftEnableThroughRegister(t *testing.T) {
	d, s, rec := newShiftDev(t, true, false, nil)

	d.WriteGlyph('A')

	assert.Equal(t, []byte{0x27, 0x26, 0x0f, 0x0e}, s.words)
	assert.Equal(t, []string{
		"SHIFT", "LATCH", "LATCH", "SHIFT", "LATCH", "LATCH",
		"SHIFT", "LATCH", "LATCH", "SHIFT", "LATCH", "LATCH",
	}, pinOrder(rec))
	assert.Contains(t, rec.sleeps(), EnablePulse)
}

func TestShiftUnlatched(t *testing.T) {
	d, s, rec := newShiftDev(t, false, true, nil)

	d.Command(0x01)

	assert.Equal(t, []byte{0x04, 0x0c}, s.words)
	assert.Empty(t, rec.writes("LATCH"))
	assert.Equal(t, []string{"SHIFT", "E", "E", "SHIFT", "E", "E"}, pinOrder(rec))
}

func TestShiftUnlatchedShiftedEnable(t *testing.T) {
	d, s, _ := newShiftDev(t, false, false, nil)

	d.Command(0x01)

	assert.Equal(t, []byte{0x05, 0x04, 0x0d, 0x0c}, s.words)
}

func TestShiftCustomLayout(t *testing.T) {
	layout := &ShiftLayout{E: 7, RS: 6, RW: Unwired, Data: [4]int{0, 1, 2, 3}}
	d, s, _ := newShiftDev(t, true, true, layout)

	d.Command(0xa5)
	d.WriteGlyph(0xa5)

	assert.Equal(t, []byte{0x0a, 0x05, 0x4a, 0x45}, s.words)
}

func TestShiftInit(t *testing.T) {
	rec := &recorder{}
	s := &fakeShifter{rec: rec}
	d, err := New(&ShiftRegister{Shifter: s, Latch: rec.pin("LATCH"), E: rec.pin("E")}, &Opts{Lines: 2, Clock: rec})
	require.NoError(t, err)
	require.Len(t, s.words, 12)

	var nibbles []byte
	for _, w := range s.words {
		assert.Zero(t, w&bit(DefaultShiftLayout.RS), "init only sends commands")
		nibbles = append(nibbles, w>>3&0x0f)
	}
	assert.Equal(t, []byte{0x3, 0x3, 0x3, 0x2, 0x2, 0x8, 0x0, 0xc, 0x0, 0x1, 0x0, 0x6}, nibbles)
	assert.Equal(t, "hd44780{shift register latched, enable pin}", d.String())
}

func TestShiftLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		layout  ShiftLayout
		routed  bool
		wantErr bool
	}{
		{"default", DefaultShiftLayout, true, false},
		{"default with enable pin", DefaultShiftLayout, false, false},
		{"shared output", ShiftLayout{E: 0, RS: 1, RW: 2, Data: [4]int{3, 4, 5, 1}}, true, true},
		{"out of range", ShiftLayout{E: 0, RS: 8, RW: 2, Data: [4]int{3, 4, 5, 6}}, true, true},
		{"enable overlaps when routed", ShiftLayout{E: 3, RS: 1, RW: Unwired, Data: [4]int{3, 4, 5, 6}}, true, true},
		{"enable ignored with pin", ShiftLayout{E: 3, RS: 1, RW: Unwired, Data: [4]int{3, 4, 5, 6}}, false, false},
		{"negative", ShiftLayout{E: 0, RS: 1, RW: -2, Data: [4]int{3, 4, 5, 6}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.validate(tt.routed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGPIOShifter(t *testing.T) {
	rec := &recorder{}
	s := &GPIOShifter{Data: rec.pin("SER"), Clock: rec.pin("SRCLK")}
	require.NoError(t, s.reset())
	rec.events = nil

	require.NoError(t, s.ShiftOut(0xa5))

	want := []gpio.Level{true, false, true, false, false, true, false, true}
	assert.Equal(t, want, rec.writes("SER"))
	clock := rec.writes("SRCLK")
	require.Len(t, clock, 16)
	for i := 0; i < 16; i += 2 {
		assert.Equal(t, gpio.High, clock[i])
		assert.Equal(t, gpio.Low, clock[i+1])
	}
	// Data is stable before each rising clock edge
	assert.Equal(t, []string{"SER", "SRCLK", "SRCLK"}, pinOrder(rec)[:3])
}

func TestSPIShifter(t *testing.T) {
	r := &conntest.Record{}
	s := &SPIShifter{Conn: r}
	require.NoError(t, s.ShiftOut(0x5a))
	require.NoError(t, s.ShiftOut(0x01))
	require.Len(t, r.Ops, 2)
	assert.Equal(t, []byte{0x5a}, r.Ops[0].W)
	assert.Equal(t, []byte{0x01}, r.Ops[1].W)

	assert.Error(t, (&SPIShifter{}).reset())
}
