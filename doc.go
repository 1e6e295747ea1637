/*
Copyright 2024 Tim St. Pierre
Package documentation
*/

// Package hd44780 drives Hitachi HD44780 compatible character LCDs.
//
// The controller is write only here: every instruction is followed by the
// worst case execution time from the datasheet instead of polling the busy
// flag, so RW can be tied to ground.
//
// # Wiring
//
// One of three wirings is chosen when the Dev is created:
//
//	Parallel       RS, optional RW, E and 4 or 8 data lines on host GPIOs
//	ShiftRegister  a 74HC595 style register fed by GPIOShifter or SPIShifter
//	Callback       any SendFunc, NewI2C uses one for PCF8574 backpacks
//
// In 4 bit mode only D4-D7 are connected and every byte goes out as two
// nibbles, high nibble first.
//
// # Basic Usage
//
//	if _, err := host.Init(); err != nil {
//		log.Fatal(err)
//	}
//	dev, err := hd44780.New(&hd44780.Parallel{
//		RS: gpioreg.ByName("GPIO4"),
//		E:  gpioreg.ByName("GPIO17"),
//		Data: []gpio.PinOut{
//			gpioreg.ByName("GPIO25"),
//			gpioreg.ByName("GPIO22"),
//			gpioreg.ByName("GPIO23"),
//			gpioreg.ByName("GPIO24"),
//		},
//	}, &hd44780.Opts{Lines: 2, Cols: 16})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Halt()
//	dev.SetCursor(0, 1)
//	dev.WriteString("Hello")
//
// # Errors
//
// Display operations do not return errors; the controller cannot report
// any. Row numbers past the last line are clamped and CGRAM slots wrap.
// Errors from the host pins or bus are kept, the first one is returned by
// Err, Write and Halt.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780
