// Package tracing times the phases of a run. Spans started from a context that
// already carries a span become its children, and the finished tree is written
// to slog when the run ends.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/logger"
)

type contextKey struct{}

// Span is one timed phase. Children may be started from several goroutines.
type Span struct {
	Name  string
	RunID string

	start    time.Time
	duration time.Duration

	mu       sync.Mutex
	children []*Span
	attrs    []any
}

// Start begins a span named name. It is a child of the span in ctx if there
// is one, and a root tagged with the context's run ID otherwise.
func Start(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{
		Name:  name,
		start: time.Now(),
	}
	if parent := FromContext(ctx); parent != nil {
		span.RunID = parent.RunID
		parent.mu.Lock()
		parent.children = append(parent.children, span)
		parent.mu.Unlock()
	} else {
		span.RunID = logger.RunID(ctx)
	}
	return context.WithValue(ctx, contextKey{}, span), span
}

// FromContext returns the current span, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(contextKey{}).(*Span)
	return span
}

func (s *Span) End() {
	s.mu.Lock()
	s.duration = time.Since(s.start)
	s.mu.Unlock()
}

// Duration is zero until End is called.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Set attaches an attribute that is logged with the span.
func (s *Span) Set(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, key, value)
	s.mu.Unlock()
}

func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Span, len(s.children))
	copy(out, s.children)
	return out
}

// Log writes the span and its descendants at debug level, parents first.
func (s *Span) Log(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.log(l, 0)
}

func (s *Span) log(l *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := make([]any, 0, 8+len(s.attrs))
	attrs = append(attrs,
		"run_id", s.RunID,
		"span", s.Name,
		"duration_ms", float64(s.duration.Microseconds())/1000,
		"depth", depth,
	)
	attrs = append(attrs, s.attrs...)
	children := make([]*Span, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	l.Debug("span", attrs...)
	for _, child := range children {
		child.log(l, depth+1)
	}
}
