//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/plant-waterer/internal/logic"
)

var (
	_ logic.Button = (*InputLine)(nil)
	_ logic.Switch = (*OutputLine)(nil)
)

// Lines owns the set of requested GPIO lines on one chip.
type Lines struct {
	chip    *gpiocdev.Chip
	inputs  []*InputLine
	outputs []*OutputLine
}

// Open opens the named GPIO character device (e.g. "gpiochip0").
func Open(chip string) (*Lines, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}
	return &Lines{chip: c}, nil
}

// Input requests pin as an input with pull-down, matching Pi boot defaults so
// external button modules behave consistently.
func (l *Lines) Input(pin int) (*InputLine, error) {
	line, err := l.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	in := &InputLine{line: line, pin: pin}
	l.inputs = append(l.inputs, in)
	return in, nil
}

// Output requests pin as an output driven low. Pumps and LEDs are active
// high, so a freshly requested line is off.
func (l *Lines) Output(pin int) (*OutputLine, error) {
	line, err := l.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	out := &OutputLine{line: line, pin: pin}
	l.outputs = append(l.outputs, out)
	return out, nil
}

// InputLine reads a single button line. Read errors are logged and the last
// good value is returned; the control core treats driver I/O as infallible.
type InputLine struct {
	line *gpiocdev.Line
	pin  int
	last bool
}

// Pressed returns whether the line reads active.
func (in *InputLine) Pressed() bool {
	v, err := in.line.Value()
	if err != nil {
		log.Printf("gpio: read pin %d: %v", in.pin, err)
		return in.last
	}
	in.last = v != 0
	return in.last
}

// OutputLine drives a single pump or LED line.
type OutputLine struct {
	line *gpiocdev.Line
	pin  int
}

// Set drives the line high (on) or low (off). Write errors are logged; the
// caller re-asserts the level every tick, so a transient failure heals.
func (out *OutputLine) Set(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := out.line.SetValue(v); err != nil {
		log.Printf("gpio: write pin %d: %v", out.pin, err)
	}
}

// Close forces every output low, reconfigures all lines to input with
// pull-down (matching Pi boot defaults) and releases the chip. A pump must
// never be left energized past process exit.
func (l *Lines) Close() error {
	var errs []error

	for _, out := range l.outputs {
		if err := out.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive pin %d low: %w", out.pin, err))
		}
		if err := out.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", out.pin, err))
		}
		if err := out.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", out.pin, err))
		}
	}
	for _, in := range l.inputs {
		if err := in.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", in.pin, err))
		}
		if err := in.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", in.pin, err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
