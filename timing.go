/*
Copyright 2024 Tim St. Pierre
Timing contract of the hd44780 controller
*/

package hd44780

import "time"

// Delays taken from the Hitachi HD44780U datasheet. Every one of them is a
// minimum; the controller is never polled for its busy flag.
const (
	// p.45/46: more than 40ms after VCC rises to 2.7V.
	PowerOnDelay = 50 * time.Millisecond
	// Figures 23/24: more than 4.1ms after the first function set.
	InitRetryDelay = 4500 * time.Microsecond
	// Figures 23/24: more than 100µs after the second function set.
	InitFinalDelay = 150 * time.Microsecond
	// Table 6: clear display and return home run for 1.52ms.
	ClearDelay = 2 * time.Millisecond
	// Table 6: the remaining instructions run for 37µs.
	CommandSettle = 100 * time.Microsecond
	// Figure 25: PW_EH is at least 450ns.
	EnablePulse = 1 * time.Microsecond
	// 74HC595 latch (RCLK) pulse width.
	LatchPulse = 1 * time.Microsecond
)

// Clock performs the blocking delays the controller relies on. Sleep must
// not return before d has elapsed.
type Clock interface {
	Sleep(d time.Duration)
}

type sleeper struct{}

func (sleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}

// SystemClock sleeps with time.Sleep.
var SystemClock Clock = sleeper{}
