// Package config reads the YAML file describing how a display is wired.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tstpierre-tc/hd44780"
)

const (
	WiringParallel = "parallel"
	WiringShift    = "shift"
	WiringSPI      = "spi"
	WiringI2C      = "i2c"

	defaultLines     = 2
	defaultCols      = 16
	defaultCharDelay = "1ms"
	defaultSPIHz     = 1000000
)

// Config names pins by their periph.io GPIO names, e.g. "GPIO17".
type Config struct {
	Wiring    string `yaml:"wiring"`
	Lines     uint8  `yaml:"lines"`
	Cols      uint8  `yaml:"cols"`
	Font      string `yaml:"font"`
	CharDelay string `yaml:"charDelay"`
	Backlight string `yaml:"backlight"`
	Parallel  struct {
		RS     string   `yaml:"rs"`
		RW     string   `yaml:"rw"`
		Enable string   `yaml:"enable"`
		Data   []string `yaml:"data"`
	} `yaml:"parallel"`
	Shift struct {
		Data   string `yaml:"data"`
		Clock  string `yaml:"clock"`
		Latch  string `yaml:"latch"`
		Enable string `yaml:"enable"`
		// SPI port name for the spi wiring, empty for the default port
		Port string `yaml:"port"`
		Hz   int64  `yaml:"hz"`
	} `yaml:"shift"`
	I2C struct {
		Bus  string `yaml:"bus"`
		Addr uint16 `yaml:"addr"`
	} `yaml:"i2c"`

	charDelay time.Duration
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(content)
}

// Parse decodes content, fills in defaults and validates the wiring.
func Parse(content []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, err
	}

	c.Wiring = strings.ToLower(strings.TrimSpace(c.Wiring))
	if c.Lines == 0 {
		c.Lines = defaultLines
	}
	if c.Cols == 0 {
		c.Cols = defaultCols
	}
	switch c.Font {
	case "", "5x8", "5x10":
	default:
		return nil, fmt.Errorf("font must be 5x8 or 5x10, got %q", c.Font)
	}
	if c.CharDelay == "" {
		c.CharDelay = defaultCharDelay
	}
	d, err := time.ParseDuration(c.CharDelay)
	if err != nil {
		return nil, fmt.Errorf("charDelay: %w", err)
	}
	c.charDelay = d

	switch c.Wiring {
	case WiringParallel:
		p := c.Parallel
		if p.RS == "" || p.Enable == "" {
			return nil, fmt.Errorf("parallel wiring needs rs and enable pins")
		}
		if len(p.Data) != 4 && len(p.Data) != 8 {
			return nil, fmt.Errorf("parallel wiring needs 4 or 8 data pins, got %d", len(p.Data))
		}
	case WiringShift:
		if c.Shift.Data == "" || c.Shift.Clock == "" {
			return nil, fmt.Errorf("shift wiring needs data and clock pins")
		}
		if c.Shift.Latch == "" && c.Shift.Enable == "" {
			return nil, fmt.Errorf("shift wiring needs a latch or an enable pin")
		}
	case WiringSPI:
		if c.Shift.Hz <= 0 {
			c.Shift.Hz = defaultSPIHz
		}
	case WiringI2C:
		if c.I2C.Addr == 0 {
			c.I2C.Addr = hd44780.DefaultOpts.I2CAddr
		}
	case "":
		return nil, fmt.Errorf("wiring is missing")
	default:
		return nil, fmt.Errorf("unknown wiring %q", c.Wiring)
	}

	return c, nil
}

// Opts returns the display options described by the file.
func (c *Config) Opts() hd44780.Opts {
	o := hd44780.Opts{
		I2CAddr:   c.I2C.Addr,
		Lines:     c.Lines,
		Cols:      c.Cols,
		Font:      hd44780.Font5x8,
		CharDelay: c.charDelay,
	}
	if c.Font == "5x10" {
		o.Font = hd44780.Font5x10
	}
	return o
}
