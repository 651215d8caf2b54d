// Package logging provides a ring-buffered slog handler for interactive
// sessions: records pass through to a base handler and the most recent N
// are kept in memory so a running shell can show its own session log.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry is one buffered log record, formatted at capture time.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %-5s %s", e.Time.Format("15:04:05"), e.Level, e.Message)
}

// ring is the shared buffer behind a BufferHandler and all handlers
// derived from it with WithAttrs/WithGroup.
type ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func (rb *ring) push(e Entry) {
	rb.mu.Lock()
	rb.entries[rb.next] = e
	rb.next++
	if rb.next == len(rb.entries) {
		rb.next = 0
		rb.full = true
	}
	rb.mu.Unlock()
}

func (rb *ring) recent(n int) []Entry {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	var out []Entry
	if rb.full {
		out = append(out, rb.entries[rb.next:]...)
	}
	out = append(out, rb.entries[:rb.next]...)
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// BufferHandler is an slog.Handler that forwards records to a wrapped base
// handler (typically stderr) and keeps the most recent records in a fixed
// ring.
type BufferHandler struct {
	base   slog.Handler
	buf    *ring
	attrs  []slog.Attr
	groups []string
}

// NewBufferHandler wraps base with a ring of the given capacity.
func NewBufferHandler(base slog.Handler, capacity int) *BufferHandler {
	if capacity <= 0 {
		capacity = 256
	}
	return &BufferHandler{base: base, buf: &ring{entries: make([]Entry, capacity)}}
}

// Enabled implements slog.Handler. Buffering follows the base handler's
// level so the ring never holds records the session would not have logged.
func (h *BufferHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.base.Handle(ctx, r)
	h.buf.push(Entry{Time: r.Time, Level: r.Level, Message: formatRecord(r, h.attrs, h.groups)})
	return err
}

// WithAttrs implements slog.Handler. The derived handler shares the ring.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferHandler{
		base:   h.base.WithAttrs(attrs),
		buf:    h.buf,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups: h.groups,
	}
}

// WithGroup implements slog.Handler. The derived handler shares the ring.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	return &BufferHandler{
		base:   h.base.WithGroup(name),
		buf:    h.buf,
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
	}
}

// Recent returns up to n buffered entries, oldest first. n <= 0 returns
// everything buffered.
func (h *BufferHandler) Recent(n int) []Entry {
	return h.buf.recent(n)
}

// formatRecord produces a compact text representation of a log record.
func formatRecord(r slog.Record, preAttrs []slog.Attr, groups []string) string {
	var b strings.Builder
	b.WriteString(r.Message)

	for _, a := range preAttrs {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if len(groups) > 0 {
			key = strings.Join(groups, ".") + "." + key
		}
		fmt.Fprintf(&b, " %s=%s", key, a.Value.String())
		return true
	})

	return b.String()
}
