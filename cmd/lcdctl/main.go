package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/tstpierre-tc/hd44780"
	"github.com/tstpierre-tc/hd44780/internal/config"
)

var (
	app        = kingpin.New("lcdctl", "Drive an HD44780 character display")
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	configFile = app.Flag("config", "Wiring configuration file.").Short('c').Default("lcd.yaml").String()

	printCmd = app.Command("print", "Print text at a position")
	printRow = printCmd.Flag("row", "Row to start on, counted from 0.").Default("0").Uint8()
	printCol = printCmd.Flag("col", "Column to start on, counted from 0.").Default("0").Uint8()
	printArg = printCmd.Arg("text", "Text to print.").Required().Strings()

	clearCmd = app.Command("clear", "Clear the display")

	glyphCmd  = app.Command("glyph", "Define a custom character and show it")
	glyphSlot = glyphCmd.Arg("slot", "CGRAM slot 0-7.").Required().Uint8()
	glyphRows = glyphCmd.Arg("rows", "Eight row bitmaps, e.g. 0x1f.").Required().Strings()

	demoCmd = app.Command("demo", "Run through the display features")
	offCmd  = app.Command("off", "Clear and switch the display off")
	versCmd = app.Command("version", "Print the version")
)

type colorFormatter struct {
	log.TextFormatter
}

func (f *colorFormatter) Format(entry *log.Entry) ([]byte, error) {
	var levelColor int
	switch entry.Level {
	case log.DebugLevel, log.TraceLevel:
		levelColor = 90 // dark grey
	case log.WarnLevel:
		levelColor = 33 // yellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		levelColor = 91 // bright red
	default:
		levelColor = 39 // default
	}
	return []byte(fmt.Sprintf("\x1b[%dm%s\x1b[0m\n", levelColor, entry.Message)), nil
}

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&colorFormatter{})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	if cmd == versCmd.FullCommand() {
		showVersion()
		return
	}

	conf, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	dev, closer, err := openDisplay(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer closer()

	switch cmd {
	case printCmd.FullCommand():
		dev.SetCursor(*printCol, *printRow)
		_, err = dev.WriteString(strings.Join(*printArg, " "))
	case clearCmd.FullCommand():
		dev.Clear()
		err = dev.Err()
	case glyphCmd.FullCommand():
		err = showGlyph(dev, *glyphSlot, *glyphRows)
	case demoCmd.FullCommand():
		err = runDemo(dev)
	case offCmd.FullCommand():
		err = dev.Halt()
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
	if err != nil {
		log.Fatal(err)
	}
}

func parseGlyph(rows []string) ([8]byte, error) {
	var glyph [8]byte
	if len(rows) != len(glyph) {
		return glyph, fmt.Errorf("a glyph has %d rows, got %d", len(glyph), len(rows))
	}
	for i, r := range rows {
		v, err := strconv.ParseUint(r, 0, 8)
		if err != nil {
			return glyph, fmt.Errorf("row %d: %w", i, err)
		}
		glyph[i] = byte(v)
	}
	return glyph, nil
}

func showGlyph(dev *hd44780.Dev, slot uint8, rows []string) error {
	glyph, err := parseGlyph(rows)
	if err != nil {
		return err
	}
	dev.CreateChar(slot, glyph)
	dev.Clear()
	dev.WriteGlyph(slot & 0x07)
	return dev.Err()
}

func runDemo(dev *hd44780.Dev) error {
	heart := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	dev.CreateChar(0, heart)
	dev.Clear()

	log.Info("Writing text")
	dev.WriteString("hd44780 ")
	dev.WriteGlyph(0)
	dev.SetCursor(0, 1)
	fmt.Fprintf(dev, "%dx%d", dev.Cols(), dev.Lines())
	time.Sleep(2 * time.Second)

	log.Info("Cursor and blink")
	dev.Cursor()
	time.Sleep(time.Second)
	dev.Blink()
	time.Sleep(2 * time.Second)
	dev.NoBlink()
	dev.NoCursor()

	log.Info("Scrolling")
	for i := 0; i < 8; i++ {
		dev.ScrollDisplayRight()
		time.Sleep(200 * time.Millisecond)
	}
	for i := 0; i < 8; i++ {
		dev.ScrollDisplayLeft()
		time.Sleep(200 * time.Millisecond)
	}

	log.Info("Right to left with autoscroll")
	dev.Clear()
	dev.SetCursor(dev.Cols()-1, 0)
	dev.RightToLeft()
	dev.Autoscroll()
	dev.WriteString("olleh")
	time.Sleep(2 * time.Second)
	dev.NoAutoscroll()
	dev.LeftToRight()

	log.Info("Blanking")
	dev.NoDisplay()
	time.Sleep(time.Second)
	dev.Display()
	dev.Home()
	return dev.Err()
}
