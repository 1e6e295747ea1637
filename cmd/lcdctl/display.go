package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/tstpierre-tc/hd44780"
	"github.com/tstpierre-tc/hd44780/internal/config"
)

// pin looks up an output by its periph name. An empty name is an
// unconnected line.
func pin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	return p, nil
}

func pins(names ...string) ([]gpio.PinOut, error) {
	out := make([]gpio.PinOut, 0, len(names))
	for _, n := range names {
		p, err := pin(n)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("empty pin name")
		}
		out = append(out, p)
	}
	return out, nil
}

// openDisplay initializes periph and returns the display described by c,
// along with a function releasing the buses it opened.
func openDisplay(c *config.Config) (*hd44780.Dev, func(), error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("unable to initialize periph: %w", err)
	}
	log.Debugf("Opening %s display", c.Wiring)

	opts := c.Opts()
	bl, err := pin(c.Backlight)
	if err != nil {
		return nil, nil, err
	}
	opts.Backlight = bl
	noop := func() {}

	switch c.Wiring {
	case config.WiringParallel:
		ctl, err := pins(c.Parallel.RS, c.Parallel.Enable)
		if err != nil {
			return nil, nil, err
		}
		rw, err := pin(c.Parallel.RW)
		if err != nil {
			return nil, nil, err
		}
		data, err := pins(c.Parallel.Data...)
		if err != nil {
			return nil, nil, err
		}
		dev, err := hd44780.New(&hd44780.Parallel{RS: ctl[0], RW: rw, E: ctl[1], Data: data}, &opts)
		return dev, noop, err

	case config.WiringShift:
		sh, err := pins(c.Shift.Data, c.Shift.Clock)
		if err != nil {
			return nil, nil, err
		}
		w, err := shiftWiring(c, &hd44780.GPIOShifter{Data: sh[0], Clock: sh[1]})
		if err != nil {
			return nil, nil, err
		}
		dev, err := hd44780.New(w, &opts)
		return dev, noop, err

	case config.WiringSPI:
		port, err := spireg.Open(c.Shift.Port)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SPI port: %w", err)
		}
		conn, err := port.Connect(physic.Frequency(c.Shift.Hz)*physic.Hertz, spi.Mode0, 8)
		if err != nil {
			port.Close()
			return nil, nil, fmt.Errorf("failed to connect SPI: %w", err)
		}
		w, err := shiftWiring(c, &hd44780.SPIShifter{Conn: conn})
		if err != nil {
			port.Close()
			return nil, nil, err
		}
		dev, err := hd44780.New(w, &opts)
		if err != nil {
			port.Close()
			return nil, nil, err
		}
		return dev, func() { port.Close() }, nil

	case config.WiringI2C:
		bus, err := i2creg.Open(c.I2C.Bus)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open I²C bus: %w", err)
		}
		dev, err := hd44780.NewI2C(bus, &opts)
		if err != nil {
			bus.Close()
			return nil, nil, err
		}
		return dev, func() { bus.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown wiring %q", c.Wiring)
}

func shiftWiring(c *config.Config, s hd44780.Shifter) (*hd44780.ShiftRegister, error) {
	latch, err := pin(c.Shift.Latch)
	if err != nil {
		return nil, err
	}
	enable, err := pin(c.Shift.Enable)
	if err != nil {
		return nil, err
	}
	return &hd44780.ShiftRegister{Shifter: s, Latch: latch, E: enable}, nil
}
