/*
Copyright 2024 Tim St. Pierre
HD44780 instruction set and the register state kept for it
*/

package hd44780

const (
	// Commands
	CMD_Clear_Display        = 0x01
	CMD_Return_Home          = 0x02
	CMD_Entry_Mode           = 0x04
	CMD_Display_Control      = 0x08
	CMD_Cursor_Display_Shift = 0x10
	CMD_Function_Set         = 0x20
	CMD_CGRAM_Set            = 0x40
	CMD_DDRAM_Set            = 0x80

	// Options
	OPT_Increment      = 0x02 // CMD_Entry_Mode, 0 = right to left
	OPT_Entry_Shift    = 0x01 // CMD_Entry_Mode
	OPT_Enable_Display = 0x04 // CMD_Display_Control
	OPT_Enable_Cursor  = 0x02 // CMD_Display_Control
	OPT_Enable_Blink   = 0x01 // CMD_Display_Control
	OPT_Display_Shift  = 0x08 // CMD_Cursor_Display_Shift
	OPT_Shift_Right    = 0x04 // CMD_Cursor_Display_Shift 0 = Left
	OPT_8_Bits         = 0x10 // CMD_Function_Set 0 = 4 bits
	OPT_2_Lines        = 0x08 // CMD_Function_Set 0 = 1 line
	OPT_5x10_Dots      = 0x04 // CMD_Function_Set 0 = 5x8 dots
)

// DDRAM address of the first cell of each row on 16 and 20 column displays.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

type functionFlags struct {
	width    BitWidth
	twoLine  bool
	tallFont bool
}

func (f functionFlags) encode() byte {
	option := byte(CMD_Function_Set)
	if f.width == Width8 {
		option |= OPT_8_Bits
	}
	if f.twoLine {
		option |= OPT_2_Lines
	}
	if f.tallFont {
		option |= OPT_5x10_Dots
	}
	return option
}

type controlFlags struct {
	display bool
	cursor  bool
	blink   bool
}

func (c controlFlags) encode() byte {
	option := byte(CMD_Display_Control)
	if c.display {
		option |= OPT_Enable_Display
	}
	if c.cursor {
		option |= OPT_Enable_Cursor
	}
	if c.blink {
		option |= OPT_Enable_Blink
	}
	return option
}

type entryFlags struct {
	leftToRight bool
	autoscroll  bool
}

func (e entryFlags) encode() byte {
	option := byte(CMD_Entry_Mode)
	if e.leftToRight {
		option |= OPT_Increment
	}
	if e.autoscroll {
		option |= OPT_Entry_Shift
	}
	return option
}
