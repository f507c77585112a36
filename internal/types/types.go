package types

import "math"

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Video is a read-only view of one <video> element on the page.
// Duration is NaN when the media has no metadata yet and +Inf for live streams.
type Video struct {
	ID         string
	Index      int
	Rect       Rect
	Paused     bool
	Ended      bool
	ReadyState int
	Duration   float64
	Position   float64
	Src        string
}

// KnownDuration reports whether Duration is a finite positive number.
func (v Video) KnownDuration() bool {
	return !math.IsNaN(v.Duration) && !math.IsInf(v.Duration, 0) && v.Duration > 0
}

type Snapshot struct {
	URL      string
	Origin   string
	Viewport Viewport
	Videos   []Video
}

type JumpResult struct {
	Input   string
	Seconds int
	Applied float64
	Video   Video
}
