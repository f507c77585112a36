package ports

import (
	"context"

	"github.com/forPelevin/timejump/internal/types"
)

// Page is a loaded document whose <video> elements can be inspected and seeked.
type Page interface {
	Snapshot(ctx context.Context) (types.Snapshot, error)
	// Seek sets currentTime on the video with the given ID (from the latest
	// Snapshot) and dispatches timeupdate, seeking and seeked.
	Seek(ctx context.Context, videoID string, seconds float64) error
}

// LastInputStore remembers the last timecode that led to a successful seek.
type LastInputStore interface {
	Load(ctx context.Context, origin string) (string, bool, error)
	Save(ctx context.Context, origin, value string) error
}
