// Package display renders plant status into fixed-geometry text frames for a
// 20x4 character display. The physical device is external to the controller;
// sinks receive complete frames and are expected to render between ticks.
package display

import (
	"fmt"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Geometry of the target character display.
const (
	Columns = 20
	Rows    = 4
)

// Frame is one full screen of text. Lines are clipped to Columns.
type Frame struct {
	Lines [Rows]string
}

// Sink displays frames.
type Sink interface {
	Show(f Frame)
}

// PlantFrame renders the rotating status view for one plant: name, moisture
// gauge, last-watered line (pumped plants only), and either the needs-water
// banner or a countdown of hours until due.
func PlantFrame(p *logic.Plant, now time.Time) Frame {
	var f Frame
	f.Lines[0] = clip(p.Name)
	f.Lines[1] = gauge(logic.Elapsed(now, p.LastWateredAt), p.MaxDryInterval)

	if p.Pump != nil && !p.LastWateredAt.IsZero() {
		f.Lines[2] = clip(fmt.Sprintf("last %s %ds",
			p.LastWateredAt.Format("Mon 15:04"),
			int(p.LastWateredDuration.Seconds())))
	}

	if logic.Due(now, p.LastWateredAt, p.MaxDryInterval) {
		f.Lines[3] = "NEEDS WATER"
	} else {
		remaining := p.MaxDryInterval - logic.Elapsed(now, p.LastWateredAt)
		f.Lines[3] = clip(fmt.Sprintf("due in %dh", hoursCeil(remaining)))
	}
	return f
}

// ConfirmFrame renders the deadman prompt shown while a demand button is
// held down.
func ConfirmFrame(name string) Frame {
	return Frame{Lines: [Rows]string{
		clip(name),
		"",
		"release button",
		"to water",
	}}
}

// WateringFrame renders session progress.
func WateringFrame(name string, elapsed, target time.Duration) Frame {
	return Frame{Lines: [Rows]string{
		clip(name),
		"watering",
		clip(fmt.Sprintf("%3ds / %ds", int(elapsed.Seconds()), int(target.Seconds()))),
		"",
	}}
}

// FaultFrame renders the latched error banner.
func FaultFrame(name string) Frame {
	return Frame{Lines: [Rows]string{
		"PUMP FAULT",
		clip(name),
		"",
		"press reset",
	}}
}

// Segments returns how many of the three moisture segments are lit: 3 when
// freshly watered, 0 once the dry interval has fully elapsed. The elapsed
// time is normalized by the plant's dry interval, with thresholds at 1/3,
// 2/3 and 1.
func Segments(elapsed, maxDry time.Duration) int {
	if maxDry <= 0 {
		return 0
	}
	frac := float64(elapsed) / float64(maxDry)
	switch {
	case frac < 1.0/3.0:
		return 3
	case frac < 2.0/3.0:
		return 2
	case frac < 1.0:
		return 1
	default:
		return 0
	}
}

func gauge(elapsed, maxDry time.Duration) string {
	lit := Segments(elapsed, maxDry)
	row := []byte("[   ]")
	for i := 0; i < lit; i++ {
		row[1+i] = '#'
	}
	return string(row)
}

func hoursCeil(d time.Duration) int {
	return int((d + time.Hour - 1) / time.Hour)
}

func clip(s string) string {
	if len(s) > Columns {
		return s[:Columns]
	}
	return s
}
