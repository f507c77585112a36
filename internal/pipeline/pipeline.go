package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/forPelevin/timejump/internal/domain/selection"
	"github.com/forPelevin/timejump/internal/ports"
	"github.com/forPelevin/timejump/internal/ports/adapters/rodpage"
	"github.com/forPelevin/timejump/internal/ports/adapters/sqlitestore"
	"github.com/forPelevin/timejump/internal/types"
	"github.com/forPelevin/timejump/internal/usecase"
)

const (
	StoreAuto   = "auto"
	StorePage   = "page"
	StoreSQLite = "sqlite"
)

type Config struct {
	URL string

	// ControlURL attaches to a running browser (--remote-debugging-port);
	// empty launches a fresh one.
	ControlURL string
	BrowserBin string
	Headless   bool
	Settle     time.Duration

	// Store selects where the last good input is remembered: page
	// localStorage, a SQLite file keyed by origin, or auto.
	Store  string
	DBPath string

	Log  *zap.Logger
	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if err := rodpage.ValidateURL(c.URL); err != nil {
		return err
	}
	if err := rodpage.ValidateControlURL(c.ControlURL); err != nil {
		return err
	}
	switch c.Store {
	case "", StoreAuto, StorePage, StoreSQLite:
	default:
		return fmt.Errorf("store must be one of auto, page, sqlite (got %q)", c.Store)
	}
	if c.Settle < 0 {
		return errors.New("wait must be >= 0")
	}
	return nil
}

// StoreKind resolves auto: a launched browser gets a throwaway profile, so
// its localStorage would not survive to the next run.
func (c Config) StoreKind() string {
	switch c.Store {
	case StorePage, StoreSQLite:
		return c.Store
	}
	if c.ControlURL != "" {
		return StorePage
	}
	return StoreSQLite
}

// Session is an open page with an overlay bound to it.
type Session struct {
	Overlay *usecase.Overlay
	Page    ports.Page

	closers []func()
}

func (s *Session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func Open(ctx context.Context, cfg Config) (*Session, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	pageURL := rodpage.NormalizeURL(cfg.URL)
	if cfg.ControlURL != "" {
		logf("attaching to browser: %s", cfg.ControlURL)
	} else {
		logf("launching browser (headless=%v)", cfg.Headless)
	}
	page, err := rodpage.Open(ctx, pageURL, rodpage.Options{
		ControlURL: cfg.ControlURL,
		BrowserBin: cfg.BrowserBin,
		Headless:   cfg.Headless,
		Settle:     cfg.Settle,
		Log:        log.Named("page"),
	})
	if err != nil {
		return nil, err
	}
	s := &Session{Page: page, closers: []func(){page.Close}}
	logf("page loaded: %s", pageURL)

	var store ports.LastInputStore
	switch kind := cfg.StoreKind(); kind {
	case StorePage:
		store = page
	case StoreSQLite:
		db, err := sqlitestore.Open(cfg.DBPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		store = db
	}
	log.Debug("last input store", zap.String("kind", cfg.StoreKind()))

	s.Overlay = usecase.New(usecase.Deps{Page: page, Store: store, Log: log.Named("overlay")})
	return s, nil
}

// Run opens the page, submits input once through the overlay and closes
// everything again.
func Run(ctx context.Context, cfg Config, input string) (types.JumpResult, error) {
	s, err := Open(ctx, cfg)
	if err != nil {
		return types.JumpResult{}, err
	}
	defer s.Close()

	if err := s.Overlay.Open(ctx); err != nil {
		return types.JumpResult{}, err
	}
	return s.Overlay.Submit(ctx, input)
}

// Candidate is one video with the numbers the selector used.
type Candidate struct {
	Video    types.Video
	Playing  bool
	Visible  bool
	Score    float64
	Selected bool
}

// Inspect lists every video on the page and marks the one a jump would target.
func Inspect(ctx context.Context, cfg Config) (types.Snapshot, []Candidate, error) {
	s, err := Open(ctx, cfg)
	if err != nil {
		return types.Snapshot{}, nil, err
	}
	defer s.Close()

	snap, err := s.Page.Snapshot(ctx)
	if err != nil {
		return types.Snapshot{}, nil, err
	}
	return snap, rank(snap), nil
}

func rank(snap types.Snapshot) []Candidate {
	best, ok := selection.Select(snap.Videos, snap.Viewport)
	out := make([]Candidate, 0, len(snap.Videos))
	for _, v := range snap.Videos {
		out = append(out, Candidate{
			Video:    v,
			Playing:  selection.IsPlaying(v),
			Visible:  selection.IsVisible(v, snap.Viewport),
			Score:    selection.Score(v, snap.Viewport),
			Selected: ok && v.ID == best.ID,
		})
	}
	return out
}

// ensure adapters implement ports
var _ ports.Page = (*rodpage.Adapter)(nil)
var _ ports.LastInputStore = (*rodpage.Adapter)(nil)
var _ ports.LastInputStore = (*sqlitestore.Store)(nil)
