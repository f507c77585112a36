package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/forPelevin/timejump/internal/domain/selection"
	"github.com/forPelevin/timejump/internal/domain/timecode"
	"github.com/forPelevin/timejump/internal/ports"
	"github.com/forPelevin/timejump/internal/types"
)

var (
	ErrInvalidTimecode = errors.New("invalid timecode")
	ErrNoVideo         = errors.New("no video on page")
)

const (
	msgInvalidTimecode = "Invalid timecode. Try 1:23 / 01:02:03 / 90 / 1h2m3s"
	msgNoVideo         = "Couldn't find a video on this page."
)

// Message returns the inline status text shown for a submit error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTimecode):
		return msgInvalidTimecode
	case errors.Is(err, ErrNoVideo):
		return msgNoVideo
	default:
		return err.Error()
	}
}

type Deps struct {
	Page  ports.Page
	Store ports.LastInputStore
	Log   *zap.Logger
}

// Overlay is the input shell behind the "Jump to" box: toggle opens it
// prefilled with the last good input, Submit parses, selects and seeks,
// Close hides it. Errors from Submit leave it open.
type Overlay struct {
	d Deps

	// toggleMu orders Toggle calls; mu guards the fields below.
	toggleMu sync.Mutex
	mu       sync.Mutex
	visible  bool
	input    string
	status   string
	activeID string
}

func New(d Deps) *Overlay {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Overlay{d: d}
}

func (o *Overlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Input is the text the input field would show.
func (o *Overlay) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

func (o *Overlay) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// ActiveVideo is the ID of the video the last submit resolved to while the
// overlay has been open, or "".
func (o *Overlay) ActiveVideo() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeID
}

// Toggle flips visibility and reports whether the overlay is now open.
// Concurrent toggles are serialised, so each one sees the previous result.
func (o *Overlay) Toggle(ctx context.Context) (bool, error) {
	o.toggleMu.Lock()
	defer o.toggleMu.Unlock()
	if o.Visible() {
		o.Close()
		return false, nil
	}
	return true, o.Open(ctx)
}

// Open shows the overlay with the remembered input. A store failure only
// leaves the field empty.
func (o *Overlay) Open(ctx context.Context) error {
	snap, err := o.d.Page.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("inspect page: %w", err)
	}

	last := ""
	if o.d.Store != nil {
		v, ok, err := o.d.Store.Load(ctx, snap.Origin)
		switch {
		case err != nil:
			o.d.Log.Warn("load last input", zap.String("origin", snap.Origin), zap.Error(err))
		case ok:
			last = v
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
	o.input = last
	o.status = ""
	o.d.Log.Debug("overlay opened", zap.String("url", snap.URL), zap.Int("videos", len(snap.Videos)), zap.String("last", last))
	return nil
}

func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
	o.status = ""
	o.activeID = ""
	o.d.Log.Debug("overlay closed")
}

// Submit handles Enter with raw in the input field.
func (o *Overlay) Submit(ctx context.Context, raw string) (types.JumpResult, error) {
	raw = strings.TrimSpace(raw)
	o.setInput(raw)

	seconds, err := timecode.Parse(raw)
	if err != nil {
		return types.JumpResult{}, o.fail(fmt.Errorf("%w: %q", ErrInvalidTimecode, raw))
	}

	snap, err := o.d.Page.Snapshot(ctx)
	if err != nil {
		return types.JumpResult{}, o.fail(fmt.Errorf("inspect page: %w", err))
	}
	v, ok := selection.Select(snap.Videos, snap.Viewport)
	if !ok {
		return types.JumpResult{}, o.fail(ErrNoVideo)
	}
	o.track(v)

	applied := selection.Clamp(float64(seconds), v.Duration)
	if err := o.d.Page.Seek(ctx, v.ID, applied); err != nil {
		return types.JumpResult{}, o.fail(fmt.Errorf("seek video %d: %w", v.Index, err))
	}
	if o.d.Store != nil {
		if err := o.d.Store.Save(ctx, snap.Origin, raw); err != nil {
			o.d.Log.Warn("save last input", zap.String("origin", snap.Origin), zap.Error(err))
		}
	}
	o.d.Log.Info("seeked",
		zap.String("input", raw),
		zap.String("target", timecode.Format(seconds)),
		zap.Float64("applied", applied),
		zap.Int("video", v.Index),
	)

	o.Close()
	return types.JumpResult{Input: raw, Seconds: seconds, Applied: applied, Video: v}, nil
}

func (o *Overlay) setInput(raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = raw
}

func (o *Overlay) fail(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = Message(err)
	return err
}

func (o *Overlay) track(v types.Video) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if v.ID == o.activeID {
		return
	}
	if o.activeID != "" {
		o.d.Log.Debug("active video changed", zap.String("from", o.activeID), zap.String("to", v.ID))
	}
	o.activeID = v.ID
}
