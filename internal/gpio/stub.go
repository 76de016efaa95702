//go:build !linux

package gpio

import "errors"

// Lines is not available on non-Linux platforms.
type Lines struct{}

// Open returns an error on non-Linux platforms.
func Open(chip string) (*Lines, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Input is not implemented on non-Linux platforms.
func (l *Lines) Input(pin int) (*InputLine, error) {
	return nil, errors.New("gpio: not supported")
}

// Output is not implemented on non-Linux platforms.
func (l *Lines) Output(pin int) (*OutputLine, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *Lines) Close() error {
	return nil
}

// InputLine is not available on non-Linux platforms.
type InputLine struct{}

// Pressed always reports released.
func (in *InputLine) Pressed() bool { return false }

// OutputLine is not available on non-Linux platforms.
type OutputLine struct{}

// Set is a no-op.
func (out *OutputLine) Set(on bool) {}
