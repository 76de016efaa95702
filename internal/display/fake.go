package display

// FakeSink records every frame shown, for test assertions.
type FakeSink struct {
	Frames []Frame
}

// Show records the frame.
func (f *FakeSink) Show(frame Frame) {
	f.Frames = append(f.Frames, frame)
}

// Last returns the most recent frame, or a zero frame if none were shown.
func (f *FakeSink) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames.
func (f *FakeSink) Reset() {
	f.Frames = nil
}
