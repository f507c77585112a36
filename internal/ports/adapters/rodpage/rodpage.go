package rodpage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/forPelevin/timejump/internal/types"
)

// ErrVideoGone is returned by Seek when the element left the document
// between snapshot and seek.
var ErrVideoGone = errors.New("video element is no longer in the document")

type Options struct {
	// ControlURL attaches to a running browser instead of launching one.
	ControlURL string
	BrowserBin string
	Headless   bool
	// Settle is how long to wait for the page to go idle after load.
	Settle time.Duration
	Log    *zap.Logger
}

// Adapter is one browser tab. It implements ports.Page and, through
// localStorage, ports.LastInputStore.
type Adapter struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	attached bool
	created  bool
	log      *zap.Logger
}

// Open launches (or attaches to) a browser and returns a tab showing pageURL.
// When attached, an already open tab whose URL matches is reused.
func Open(ctx context.Context, pageURL string, opts Options) (*Adapter, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{log: log, attached: opts.ControlURL != ""}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(opts.Headless)
		if opts.BrowserBin != "" {
			l = l.Bin(opts.BrowserBin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		a.launcher = l
		controlURL = u
	}

	a.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := a.browser.Connect(); err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, created, err := a.findOrCreatePage(pageURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.page, a.created = page, created

	if err := a.page.WaitLoad(); err != nil {
		a.Close()
		return nil, fmt.Errorf("wait for page load: %w", err)
	}
	if opts.Settle > 0 {
		if err := a.page.WaitIdle(opts.Settle); err != nil {
			log.Debug("page did not go idle", zap.Duration("settle", opts.Settle), zap.Error(err))
		}
	}
	log.Debug("page ready", zap.String("url", pageURL), zap.Bool("attached", a.attached))
	return a, nil
}

func (a *Adapter) findOrCreatePage(pageURL string) (*rod.Page, bool, error) {
	if a.attached {
		pages, err := a.browser.Pages()
		if err != nil {
			return nil, false, fmt.Errorf("list pages: %w", err)
		}
		if p, err := pages.FindByURL(regexp.QuoteMeta(pageURL)); err == nil {
			a.log.Debug("reusing open tab", zap.String("url", pageURL))
			return p, false, nil
		}
	}
	p, err := a.browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, false, fmt.Errorf("open page %s: %w", pageURL, err)
	}
	return p, true, nil
}

// Close releases what Open acquired. A browser we attached to stays running,
// and only a tab Open created in it is closed.
func (a *Adapter) Close() {
	if a.page != nil && a.created {
		_ = a.page.Close()
	}
	if a.attached {
		return
	}
	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Cleanup()
	}
}

type wireSnapshot struct {
	URL      string         `json:"url"`
	Origin   string         `json:"origin"`
	Viewport types.Viewport `json:"viewport"`
	Videos   []wireVideo    `json:"videos"`
}

type wireVideo struct {
	ID         string     `json:"id"`
	Index      int        `json:"index"`
	Rect       types.Rect `json:"rect"`
	Paused     bool       `json:"paused"`
	Ended      bool       `json:"ended"`
	ReadyState int        `json:"readyState"`
	Duration   *float64   `json:"duration"`
	Live       bool       `json:"live"`
	Position   float64    `json:"position"`
	Src        string     `json:"src"`
}

func (w wireVideo) video() types.Video {
	d := math.NaN()
	switch {
	case w.Duration != nil:
		d = *w.Duration
	case w.Live:
		d = math.Inf(1)
	}
	return types.Video{
		ID:         w.ID,
		Index:      w.Index,
		Rect:       w.Rect,
		Paused:     w.Paused,
		Ended:      w.Ended,
		ReadyState: w.ReadyState,
		Duration:   d,
		Position:   w.Position,
		Src:        w.Src,
	}
}

func (a *Adapter) Snapshot(ctx context.Context) (types.Snapshot, error) {
	var w wireSnapshot
	if err := a.Eval(ctx, &w, snapshotJS); err != nil {
		return types.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return decodeSnapshot(w), nil
}

func decodeSnapshot(w wireSnapshot) types.Snapshot {
	s := types.Snapshot{URL: w.URL, Origin: w.Origin, Viewport: w.Viewport}
	for _, v := range w.Videos {
		s.Videos = append(s.Videos, v.video())
	}
	return s
}

func (a *Adapter) Seek(ctx context.Context, videoID string, seconds float64) error {
	var found bool
	if err := a.Eval(ctx, &found, seekJS, videoID, seconds); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if !found {
		return ErrVideoGone
	}
	return nil
}

// Load reads the page's own localStorage; origin is implied by the tab.
func (a *Adapter) Load(ctx context.Context, _ string) (string, bool, error) {
	var v *string
	if err := a.Eval(ctx, &v, loadJS, LastInputKey); err != nil {
		return "", false, fmt.Errorf("read localStorage: %w", err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (a *Adapter) Save(ctx context.Context, _ string, value string) error {
	var ok bool
	if err := a.Eval(ctx, &ok, saveJS, LastInputKey, value); err != nil {
		return fmt.Errorf("write localStorage: %w", err)
	}
	return nil
}

// Eval runs a JS function in the tab and decodes its JSON result into out.
func (a *Adapter) Eval(ctx context.Context, out any, js string, args ...any) error {
	res, err := a.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	b, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode eval result: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode eval result: %w", err)
	}
	return nil
}
