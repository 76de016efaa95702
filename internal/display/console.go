package display

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleSink writes frames to a writer, skipping consecutive identical
// frames so a fast control loop does not flood the terminal. It stands in
// for the character display during bring-up and on machines without one.
type ConsoleSink struct {
	w    io.Writer
	last Frame
	seen bool
}

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Show writes the frame if it differs from the previous one.
func (s *ConsoleSink) Show(f Frame) {
	if s.seen && f == s.last {
		return
	}
	s.last = f
	s.seen = true

	fmt.Fprintln(s.w, strings.Repeat("-", Columns))
	for _, line := range f.Lines {
		fmt.Fprintln(s.w, line)
	}
}
