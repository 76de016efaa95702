package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/plant-waterer/internal/gpio"
	"github.com/sweeney/plant-waterer/internal/logic"
)

func TestSegments(t *testing.T) {
	maxDry := 48 * time.Hour

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"just watered", 0, 3},
		{"under one third", 15 * time.Hour, 3},
		{"exactly one third", 16 * time.Hour, 2},
		{"under two thirds", 31 * time.Hour, 2},
		{"exactly two thirds", 32 * time.Hour, 1},
		{"just under due", 47 * time.Hour, 1},
		{"exactly due", 48 * time.Hour, 0},
		{"long overdue", 100 * time.Hour, 0},
	}

	for _, tt := range tests {
		if got := Segments(tt.elapsed, maxDry); got != tt.want {
			t.Errorf("%s: got %d segments, want %d", tt.name, got, tt.want)
		}
	}

	if got := Segments(time.Hour, 0); got != 0 {
		t.Errorf("zero interval: got %d, want 0", got)
	}
}

func TestPlantFrameFresh(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	p := &logic.Plant{
		Name:                "basil",
		Pump:                &gpio.FakeSwitch{},
		MaxDryInterval:      48 * time.Hour,
		WaterDuration:       90 * time.Second,
		LastWateredAt:       now.Add(-time.Hour),
		LastWateredDuration: 90 * time.Second,
	}

	f := PlantFrame(p, now)
	if f.Lines[0] != "basil" {
		t.Errorf("line 0: got %q", f.Lines[0])
	}
	if f.Lines[1] != "[###]" {
		t.Errorf("line 1: got %q, want full gauge", f.Lines[1])
	}
	if !strings.Contains(f.Lines[2], "90s") {
		t.Errorf("line 2 should show last duration, got %q", f.Lines[2])
	}
	if f.Lines[3] != "due in 47h" {
		t.Errorf("line 3: got %q", f.Lines[3])
	}
}

func TestPlantFrameOverdue(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	p := &logic.Plant{
		Name:           "fern",
		Pump:           &gpio.FakeSwitch{},
		MaxDryInterval: 24 * time.Hour,
		LastWateredAt:  now.Add(-30 * time.Hour),
	}

	f := PlantFrame(p, now)
	if f.Lines[1] != "[   ]" {
		t.Errorf("gauge: got %q, want empty", f.Lines[1])
	}
	if f.Lines[3] != "NEEDS WATER" {
		t.Errorf("line 3: got %q", f.Lines[3])
	}
}

// Hand-watered plants have no pump and no last-watered line.
func TestPlantFrameHandWatered(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	p := &logic.Plant{
		Name:           "succulent",
		MaxDryInterval: 14 * 24 * time.Hour,
		LastWateredAt:  now.Add(-time.Hour),
	}

	f := PlantFrame(p, now)
	if f.Lines[2] != "" {
		t.Errorf("expected no last-watered line for a pumpless plant, got %q", f.Lines[2])
	}
}

func TestModeFrames(t *testing.T) {
	f := ConfirmFrame("basil")
	if f.Lines[2] != "release button" {
		t.Errorf("confirm frame: got %q", f.Lines[2])
	}

	f = WateringFrame("basil", 42*time.Second, 180*time.Second)
	if !strings.Contains(f.Lines[2], "42s / 180s") {
		t.Errorf("watering frame: got %q", f.Lines[2])
	}

	f = FaultFrame("basil")
	if f.Lines[0] != "PUMP FAULT" || f.Lines[3] != "press reset" {
		t.Errorf("fault frame: got %v", f.Lines)
	}
}

func TestClipLongName(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	p := &logic.Plant{
		Name:           "a plant with an unreasonably long label",
		MaxDryInterval: time.Hour,
		LastWateredAt:  now,
	}

	f := PlantFrame(p, now)
	if len(f.Lines[0]) != Columns {
		t.Errorf("expected name clipped to %d columns, got %d", Columns, len(f.Lines[0]))
	}
}

func TestConsoleSinkDeduplicates(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)

	f := FaultFrame("basil")
	s.Show(f)
	first := buf.Len()
	if first == 0 {
		t.Fatal("expected output for first frame")
	}

	s.Show(f)
	s.Show(f)
	if buf.Len() != first {
		t.Error("identical consecutive frames should not be rewritten")
	}

	s.Show(ConfirmFrame("basil"))
	if buf.Len() == first {
		t.Error("a different frame should be written")
	}
}

func TestFakeSink(t *testing.T) {
	s := &FakeSink{}
	if (s.Last() != Frame{}) {
		t.Error("empty sink should return zero frame")
	}
	s.Show(FaultFrame("x"))
	s.Show(ConfirmFrame("y"))
	if len(s.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(s.Frames))
	}
	if s.Last().Lines[0] != "y" {
		t.Errorf("Last: got %q", s.Last().Lines[0])
	}
	s.Reset()
	if s.Frames != nil {
		t.Error("Reset should clear frames")
	}
}
