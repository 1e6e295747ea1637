package hd44780

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// event is one pin write or one delay, in call order.
type event struct {
	pin   string
	level gpio.Level
	sleep time.Duration
}

// recorder is the Clock and the log shared by every fake pin of a test.
type recorder struct {
	events []event
}

func (r *recorder) Sleep(d time.Duration) {
	r.events = append(r.events, event{sleep: d})
}

func (r *recorder) pin(name string) *fakePin {
	return &fakePin{name: name, rec: r}
}

// sleeps returns the delays recorded so far.
func (r *recorder) sleeps() []time.Duration {
	var out []time.Duration
	for _, e := range r.events {
		if e.pin == "" {
			out = append(out, e.sleep)
		}
	}
	return out
}

// writes returns the levels written to the named pin.
func (r *recorder) writes(name string) []gpio.Level {
	var out []gpio.Level
	for _, e := range r.events {
		if e.pin == name {
			out = append(out, e.level)
		}
	}
	return out
}

type fakePin struct {
	name   string
	rec    *recorder
	level  gpio.Level
	fail   error
	onHigh func()
}

func (p *fakePin) String() string {
	return p.name
}

func (p *fakePin) Name() string {
	return p.name
}

func (p *fakePin) Number() int {
	return -1
}

func (p *fakePin) Function() string {
	return "Out"
}

func (p *fakePin) Halt() error {
	return nil
}

func (p *fakePin) Out(l gpio.Level) error {
	if p.fail != nil {
		return p.fail
	}
	p.level = l
	p.rec.events = append(p.rec.events, event{pin: p.name, level: l})
	if l == gpio.High && p.onHigh != nil {
		p.onHigh()
	}
	return nil
}

func (p *fakePin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("not implemented")
}

var _ gpio.PinOut = &fakePin{}

// frame is what the controller latches on one enable pulse.
type frame struct {
	mode  Mode
	value byte
	width BitWidth
}

// parallelBench is a Parallel wiring on fake pins that decodes every enable
// pulse into a frame.
type parallelBench struct {
	rec    *recorder
	rs, e  *fakePin
	rw     *fakePin
	data   []*fakePin
	frames []frame
	wiring *Parallel
}

func newParallelBench(width int, withRW bool) *parallelBench {
	b := &parallelBench{rec: &recorder{}}
	b.rs = b.rec.pin("RS")
	b.e = b.rec.pin("E")
	w := &Parallel{RS: b.rs, E: b.e}
	if withRW {
		b.rw = b.rec.pin("RW")
		w.RW = b.rw
	}
	names := []string{"D4", "D5", "D6", "D7"}
	if width == 8 {
		names = []string{"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7"}
	}
	for _, n := range names {
		p := b.rec.pin(n)
		b.data = append(b.data, p)
		w.Data = append(w.Data, p)
	}
	b.e.onHigh = func() {
		var v byte
		for i, p := range b.data {
			if p.level {
				v |= 1 << uint(i)
			}
		}
		b.frames = append(b.frames, frame{mode: Mode(b.rs.level), value: v, width: BitWidth(width)})
	}
	b.wiring = w
	return b
}

// reset drops everything recorded so far.
func (b *parallelBench) reset() {
	b.rec.events = nil
	b.frames = nil
}

// callbackBench records the transmissions handed to a Callback wiring.
type callbackBench struct {
	rec    *recorder
	frames []frame
	fail   error
}

func (b *callbackBench) send(value byte, mode Mode, width BitWidth) error {
	b.frames = append(b.frames, frame{mode: mode, value: value, width: width})
	return b.fail
}

// bytes joins nibble frames back into the bytes they carry.
func bytesOf(frames []frame) []byte {
	var out []byte
	for i := 0; i < len(frames); i++ {
		f := frames[i]
		if f.width == Width8 {
			out = append(out, f.value)
			continue
		}
		if i+1 < len(frames) {
			out = append(out, f.value<<4|frames[i+1].value)
			i++
		}
	}
	return out
}
