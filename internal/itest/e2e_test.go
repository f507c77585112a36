//go:build integration

package itest

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/forPelevin/timejump/internal/pipeline"
	"github.com/forPelevin/timejump/internal/ports"
	"github.com/forPelevin/timejump/internal/ports/adapters/rodpage"
	"github.com/forPelevin/timejump/internal/types"
)

const indexHTML = `<!doctype html>
<html>
<body style="margin:0">
  <script>
    window.__events = [];
    for (const type of ["timeupdate", "seeking", "seeked"]) {
      document.addEventListener(type, (e) => {
        if (e.target.id === "main" && e.isTrusted === false) window.__events.push(e.type);
      });
    }
  </script>
  <video id="main" src="clip.webm" muted preload="auto" width="640" height="360"></video>
  <video id="offscreen" src="clip.webm" muted preload="auto" width="1280" height="720"
         style="position:absolute; top:4000px"></video>
</body>
</html>`

func TestE2E_JumpOnServedPage(t *testing.T) {
	dir := t.TempDir()
	makeVideo(t, dir, 120)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		URL:        srv.URL + "/index.html",
		BrowserBin: os.Getenv("TIMEJUMP_BROWSER_BIN"),
		Headless:   true,
		Store:      pipeline.StorePage,
		Log:        zaptest.NewLogger(t),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	s, err := pipeline.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	waitForMetadata(ctx, t, s.Page, 2)

	if err := s.Overlay.Open(ctx); err != nil {
		t.Fatalf("overlay open: %v", err)
	}
	res, err := s.Overlay.Submit(ctx, "1:05")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Seconds != 65 || res.Video.Index != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.Overlay.Visible() {
		t.Fatalf("expected overlay closed after seek")
	}

	snap, err := s.Page.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if pos := snap.Videos[0].Position; math.Abs(pos-65) > 0.01 {
		t.Fatalf("expected main video at 65s, got %.3f", pos)
	}
	if pos := snap.Videos[1].Position; pos != 0 {
		t.Fatalf("offscreen video must not move, got %.3f", pos)
	}

	events := dispatchedEvents(ctx, t, s.Page)
	want := []string{"timeupdate", "seeking", "seeked"}
	if len(events) < len(want) {
		t.Fatalf("expected %v on the document, got %v", want, events)
	}
	for i, typ := range want {
		if events[i] != typ {
			t.Fatalf("expected %v on the document, got %v", want, events)
		}
	}

	store, ok := s.Page.(ports.LastInputStore)
	if !ok {
		t.Fatalf("page adapter does not expose localStorage")
	}
	last, found, err := store.Load(ctx, snap.Origin)
	if err != nil || !found || last != "1:05" {
		t.Fatalf("expected localStorage to hold 1:05, got %q found=%v err=%v", last, found, err)
	}

	// Past the end lands just before it.
	if err := s.Overlay.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s.Overlay.Input() != "1:05" {
		t.Fatalf("expected prefilled 1:05, got %q", s.Overlay.Input())
	}
	if _, err := s.Overlay.Submit(ctx, "5m"); err != nil {
		t.Fatalf("submit past end: %v", err)
	}
	snap, err = s.Page.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	first := snap.Videos[0]
	if first.Position >= first.Duration || first.Position < first.Duration-0.1 {
		t.Fatalf("expected position just before %.3f, got %.3f", first.Duration, first.Position)
	}
}

// dispatchedEvents returns the synthetic media events the page saw, in order.
func dispatchedEvents(ctx context.Context, t *testing.T, page ports.Page) []string {
	t.Helper()
	a, ok := page.(*rodpage.Adapter)
	if !ok {
		t.Fatalf("unexpected page type %T", page)
	}
	var events []string
	if err := a.Eval(ctx, &events, `() => window.__events`); err != nil {
		t.Fatalf("read events: %v", err)
	}
	return events
}

func waitForMetadata(ctx context.Context, t *testing.T, page ports.Page, want int) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := page.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if countKnown(snap.Videos) >= want {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("videos never reported a duration")
}

func countKnown(videos []types.Video) int {
	n := 0
	for _, v := range videos {
		if v.KnownDuration() {
			n++
		}
	}
	return n
}
