package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func newTestHandler(capacity int) (*BufferHandler, *strings.Builder) {
	var out strings.Builder
	base := slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo})
	return NewBufferHandler(base, capacity), &out
}

func TestBufferKeepsRecent(t *testing.T) {
	h, out := newTestHandler(4)
	log := slog.New(h)

	for i := 0; i < 6; i++ {
		log.Info(fmt.Sprintf("msg%d", i))
	}

	got := h.Recent(0)
	if len(got) != 4 {
		t.Fatalf("Recent(0) returned %d entries, want 4", len(got))
	}
	for i, e := range got {
		want := fmt.Sprintf("msg%d", i+2)
		if e.Message != want {
			t.Errorf("entry %d: message = %q, want %q", i, e.Message, want)
		}
	}
	if n := strings.Count(out.String(), "msg"); n != 6 {
		t.Errorf("base handler saw %d records, want 6", n)
	}
}

func TestBufferRecentLimit(t *testing.T) {
	h, _ := newTestHandler(8)
	log := slog.New(h)

	log.Info("a")
	log.Info("b")
	log.Info("c")

	got := h.Recent(2)
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Fatalf("Recent(2) = %v, want [b c]", got)
	}
}

func TestBufferFollowsBaseLevel(t *testing.T) {
	h, _ := newTestHandler(8)
	log := slog.New(h)

	log.Debug("hidden")
	log.Warn("kept")

	got := h.Recent(0)
	if len(got) != 1 || got[0].Message != "kept" {
		t.Fatalf("Recent(0) = %v, want only the warn record", got)
	}
	if got[0].Level != slog.LevelWarn {
		t.Errorf("level = %v, want %v", got[0].Level, slog.LevelWarn)
	}
}

func TestDerivedHandlersShareRing(t *testing.T) {
	h, _ := newTestHandler(8)
	log := slog.New(h)
	sub := log.With("conn", "7").WithGroup("peer")

	log.Info("root")
	sub.Info("scoped", "addr", "10.0.0.1")

	got := h.Recent(0)
	if len(got) != 2 {
		t.Fatalf("Recent(0) returned %d entries, want 2", len(got))
	}
	if got[0].Message != "root" {
		t.Errorf("first entry = %q, want %q", got[0].Message, "root")
	}
	want := "scoped conn=7 peer.addr=10.0.0.1"
	if got[1].Message != want {
		t.Errorf("second entry = %q, want %q", got[1].Message, want)
	}
}

func TestBufferConcurrentWriters(t *testing.T) {
	base := slog.NewTextHandler(io.Discard, nil)
	h := NewBufferHandler(base, 32)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log := slog.New(h.WithAttrs([]slog.Attr{slog.Int("worker", i)}))
			for j := 0; j < 20; j++ {
				log.Info("tick")
			}
		}(i)
	}
	wg.Wait()

	if got := len(h.Recent(0)); got != 32 {
		t.Fatalf("ring holds %d entries after wraparound, want 32", got)
	}
}
