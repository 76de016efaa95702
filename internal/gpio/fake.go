package gpio

import "github.com/sweeney/plant-waterer/internal/logic"

var (
	_ logic.Button = (*FakeButton)(nil)
	_ logic.Switch = (*FakeSwitch)(nil)
)

// FakeButton is a settable test double for a digital input.
type FakeButton struct {
	// Down is the current level; Pressed returns it.
	Down bool

	// Reads counts calls to Pressed.
	Reads int
}

// Pressed returns the current level.
func (f *FakeButton) Pressed() bool {
	f.Reads++
	return f.Down
}

// Press asserts the button.
func (f *FakeButton) Press() { f.Down = true }

// Release deasserts the button.
func (f *FakeButton) Release() { f.Down = false }

// FakeSwitch records every level written to it.
type FakeSwitch struct {
	// On is the last level written.
	On bool

	// Writes contains every level written, in order.
	Writes []bool
}

// Set records the level.
func (f *FakeSwitch) Set(on bool) {
	f.On = on
	f.Writes = append(f.Writes, on)
}

// Reset clears recorded state.
func (f *FakeSwitch) Reset() {
	f.On = false
	f.Writes = nil
}
