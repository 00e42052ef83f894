package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/bst"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/word"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/tracing"
)

// Publisher receives one event per indexed file. pkg/kafka.Producer satisfies
// it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// FileIndexedEvent is published after a file's words are in the tree.
type FileIndexedEvent struct {
	RunID     string    `json:"run_id"`
	File      string    `json:"file"`
	Lines     int       `json:"lines"`
	Tokens    int       `json:"tokens"`
	NewWords  int       `json:"new_words"`
	Timestamp time.Time `json:"timestamp"`
}

// FileStats summarises one ingested file.
type FileStats struct {
	File     string
	Lines    int
	Tokens   int
	NewWords int
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithCodec(c *snapshot.Codec) Option {
	return func(e *Engine) { e.codec = c }
}

func WithReadConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.readConcurrency = n
		}
	}
}

// Engine owns the word tree for one run: it restores it from a Store, feeds
// it tokens, saves it back and renders reports. It is not safe for
// concurrent use.
type Engine struct {
	tree            *bst.Tree[*word.Record]
	store           store.Store
	codec           *snapshot.Codec
	metrics         *metrics.Metrics
	publisher       Publisher
	readConcurrency int
}

func NewEngine(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		tree:            bst.New[*word.Record](),
		store:           st,
		codec:           snapshot.NewCodec(snapshot.Snappy),
		readConcurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	return e
}

// Load replaces the tree with the stored snapshot. A missing snapshot starts
// an empty index; so does a corrupt one, after a warning. Store I/O failures
// are returned so a later Save cannot overwrite a snapshot that was merely
// unreachable.
func (e *Engine) Load(ctx context.Context) error {
	ctx, span := tracing.Start(ctx, "snapshot.load")
	defer span.End()
	log := logger.WithComponent(ctx, "indexer").With("store", e.store.Name())
	start := time.Now()
	defer func() {
		e.metrics.SnapshotDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
	}()

	data, err := e.store.Load(ctx)
	switch {
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		e.tree = bst.New[*word.Record]()
		e.metrics.SnapshotOps.WithLabelValues("load", "missing").Inc()
		log.Info("no snapshot found, starting with an empty index")
		e.observeTree()
		return nil
	case err != nil:
		e.metrics.SnapshotOps.WithLabelValues("load", "error").Inc()
		return fmt.Errorf("loading snapshot: %w", err)
	}

	span.Set("bytes", len(data))
	tree, err := e.codec.Decode(data)
	if err != nil {
		e.tree = bst.New[*word.Record]()
		e.metrics.SnapshotOps.WithLabelValues("load", "corrupt").Inc()
		log.Warn("snapshot is corrupt, starting with an empty index", "error", err, "bytes", len(data))
		e.observeTree()
		return nil
	}
	e.tree = tree
	e.metrics.SnapshotOps.WithLabelValues("load", "ok").Inc()
	e.metrics.SnapshotBytes.Set(float64(len(data)))
	e.observeTree()
	log.Info("snapshot restored", "words", tree.Len(), "height", tree.Height(), "bytes", len(data))
	return nil
}

// Record adds one occurrence of w, creating its record on first sight. It
// reports whether the word was new.
func (e *Engine) Record(w, file string, line int) (bool, error) {
	if line < 1 {
		return false, fmt.Errorf("recording %q at %s:%d: line must be >= 1: %w", w, file, line, apperrors.ErrInvalidArgument)
	}
	rec, found, err := e.tree.Search(w)
	if err != nil {
		return false, fmt.Errorf("recording %q: %w", w, err)
	}
	created := false
	if !found {
		rec = word.New(w)
		if err := e.tree.Insert(rec); err != nil {
			return false, fmt.Errorf("recording %q: %w", w, err)
		}
		created = true
		e.metrics.WordsCreated.Inc()
	}
	rec.AddOccurrence(file, line)
	e.metrics.OccurrencesTotal.Inc()
	return created, nil
}

// IndexReader tokenizes r and records every word under the name file.
func (e *Engine) IndexReader(ctx context.Context, file string, r io.Reader) (FileStats, error) {
	ctx, span := tracing.Start(ctx, "index")
	defer span.End()
	span.Set("file", file)

	tokens, err := tokenizer.ReadTokens(r)
	if err != nil {
		e.metrics.FilesIndexed.WithLabelValues("error").Inc()
		return FileStats{}, apperrors.Newf(apperrors.ErrInputFile, apperrors.ExitBadInput, "reading %s: %v", file, err)
	}
	s, err := e.apply(ctx, file, tokens)
	if err != nil {
		return s, err
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, e.event(ctx, s)); err != nil {
			logger.WithComponent(ctx, "indexer").Error("failed to publish file indexed event",
				"file", file,
				"error", err,
			)
		}
	}
	return s, nil
}

// IndexFiles reads and tokenizes every path concurrently, then records the
// tokens one file at a time in argument order. If any file cannot be read the
// tree is left untouched.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) ([]FileStats, error) {
	ctx, span := tracing.Start(ctx, "index")
	defer span.End()
	span.Set("files", len(paths))

	tokenized := make([][]tokenizer.Token, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.readConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, read := tracing.Start(gctx, "read")
			defer read.End()
			read.Set("file", path)
			tokens, err := readFile(path)
			if err != nil {
				return err
			}
			read.Set("tokens", len(tokens))
			tokenized[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.metrics.FilesIndexed.WithLabelValues("error").Inc()
		return nil, err
	}

	stats := make([]FileStats, 0, len(paths))
	for i, path := range paths {
		s, err := e.apply(ctx, path, tokenized[i])
		if err != nil {
			return stats, err
		}
		stats = append(stats, s)
	}
	e.publishAll(ctx, stats)
	return stats, nil
}

// Save encodes the tree and hands it to the store.
func (e *Engine) Save(ctx context.Context) error {
	ctx, span := tracing.Start(ctx, "snapshot.save")
	defer span.End()
	log := logger.WithComponent(ctx, "indexer").With("store", e.store.Name())
	start := time.Now()
	defer func() {
		e.metrics.SnapshotDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
	}()

	data, err := e.codec.Encode(e.tree)
	if err != nil {
		e.metrics.SnapshotOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := e.store.Save(ctx, data); err != nil {
		e.metrics.SnapshotOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("saving snapshot: %w", err)
	}
	span.Set("bytes", len(data))
	e.metrics.SnapshotOps.WithLabelValues("save", "ok").Inc()
	e.metrics.SnapshotBytes.Set(float64(len(data)))
	log.Info("snapshot saved", "words", e.tree.Len(), "bytes", len(data))
	return nil
}

// Report writes every word in ascending order using format f.
func (e *Engine) Report(w io.Writer, f report.Format) (int, error) {
	return report.Write(w, e.tree.InOrder(), f)
}

// Lookup returns the record for w, if any.
func (e *Engine) Lookup(w string) (*word.Record, bool, error) {
	return e.tree.Search(w)
}

func (e *Engine) Len() int {
	return e.tree.Len()
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

func (e *Engine) apply(ctx context.Context, file string, tokens []tokenizer.Token) (FileStats, error) {
	s := FileStats{File: file}
	for _, tok := range tokens {
		created, err := e.Record(tok.Term, file, tok.Line)
		if err != nil {
			e.metrics.FilesIndexed.WithLabelValues("error").Inc()
			return s, err
		}
		s.Tokens++
		if created {
			s.NewWords++
		}
		if tok.Line > s.Lines {
			s.Lines = tok.Line
		}
	}
	e.metrics.FilesIndexed.WithLabelValues("ok").Inc()
	e.observeTree()
	logger.WithComponent(ctx, "indexer").Debug("file indexed",
		"file", file,
		"tokens", s.Tokens,
		"new_words", s.NewWords,
		"distinct_words", e.tree.Len(),
	)
	return s, nil
}

// publishAll sends one event per file in a single batch. Publishing is best
// effort; the index is already updated.
func (e *Engine) publishAll(ctx context.Context, stats []FileStats) {
	if e.publisher == nil || len(stats) == 0 {
		return
	}
	events := make([]kafka.Event, 0, len(stats))
	for _, s := range stats {
		events = append(events, e.event(ctx, s))
	}
	if err := e.publisher.PublishBatch(ctx, events); err != nil {
		logger.WithComponent(ctx, "indexer").Error("failed to publish file indexed events",
			"files", len(events),
			"error", err,
		)
	}
}

func (e *Engine) event(ctx context.Context, s FileStats) kafka.Event {
	return kafka.Event{
		Key: s.File,
		Value: FileIndexedEvent{
			RunID:     logger.RunID(ctx),
			File:      s.File,
			Lines:     s.Lines,
			Tokens:    s.Tokens,
			NewWords:  s.NewWords,
			Timestamp: time.Now().UTC(),
		},
	}
}

func (e *Engine) observeTree() {
	e.metrics.DistinctWords.Set(float64(e.tree.Len()))
	e.metrics.TreeHeight.Set(float64(e.tree.Height()))
}

func readFile(path string) ([]tokenizer.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInputFile, apperrors.ExitBadInput, "opening %s: %v", path, err)
	}
	defer f.Close()
	tokens, err := tokenizer.ReadTokens(f)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInputFile, apperrors.ExitBadInput, "reading %s: %v", path, err)
	}
	return tokens, nil
}
