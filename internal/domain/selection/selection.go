package selection

import (
	"math"

	"github.com/forPelevin/timejump/internal/types"
)

const (
	// VisibleWeight dominates any realistic pixel area so a visible video
	// always outranks an offscreen one.
	VisibleWeight = 1_000_000

	// Epsilon keeps seeks strictly before end of media; some players treat
	// currentTime == duration as ended.
	Epsilon = 0.001

	// haveCurrentData is HTMLMediaElement.HAVE_CURRENT_DATA.
	haveCurrentData = 2
)

// Select returns the video a seek should target.
//  1. The first video that is actually playing.
//  2. Otherwise the highest Score, first one wins ties.
func Select(videos []types.Video, vp types.Viewport) (types.Video, bool) {
	if len(videos) == 0 {
		return types.Video{}, false
	}

	for _, v := range videos {
		if IsPlaying(v) {
			return v, true
		}
	}

	best := 0
	bestScore := Score(videos[0], vp)
	for i := 1; i < len(videos); i++ {
		if s := Score(videos[i], vp); s > bestScore {
			best, bestScore = i, s
		}
	}
	return videos[best], true
}

// IsPlaying reports whether the video is advancing past its current frame.
func IsPlaying(v types.Video) bool {
	return !v.Paused && !v.Ended && v.ReadyState > haveCurrentData
}

// IsVisible reports whether the video has a non-empty box that intersects the viewport.
func IsVisible(v types.Video, vp types.Viewport) bool {
	r := v.Rect
	return r.Width > 0 && r.Height > 0 &&
		r.Bottom() > 0 && r.Right() > 0 &&
		r.Y < vp.Height && r.X < vp.Width
}

// Score ranks a non-playing video: visibility first, then area.
func Score(v types.Video, vp types.Viewport) float64 {
	area := math.Max(0, v.Rect.Width) * math.Max(0, v.Rect.Height)
	if IsVisible(v, vp) {
		return VisibleWeight + area
	}
	return area
}

// Clamp bounds a seek target to [0, duration-Epsilon] when duration is a
// finite positive number, otherwise only to >= 0.
func Clamp(seconds, duration float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return seconds
	}
	return clamp(seconds, 0, math.Max(0, duration-Epsilon))
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
