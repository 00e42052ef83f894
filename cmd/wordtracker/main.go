package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return apperrors.ExitOK
	}
	if err != nil {
		return apperrors.ExitCode(err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return apperrors.ExitFailure
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)
	ctx = logger.WithRunID(ctx, uuid.NewString())
	log := logger.WithComponent(ctx, "cli")
	log.Info("starting run",
		"inputs", len(opts.inputs),
		"format", opts.format.String(),
		"backend", cfg.Snapshot.Backend,
	)

	if err := track(ctx, cfg, opts, stdin, stdout, log); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	log.Info("run finished")
	return apperrors.ExitOK
}

// track loads the index, adds the inputs, saves and reports. The snapshot is
// only saved when every input was read; a failed save still produces the
// report but the run exits non-zero.
func track(ctx context.Context, cfg *config.Config, opts options, stdin io.Reader, stdout io.Writer, log *slog.Logger) error {
	ctx, span := tracing.Start(ctx, "run")
	defer func() {
		span.End()
		span.Log(log)
	}()

	st, closer, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	compression, err := snapshot.ParseCompression(cfg.Snapshot.Compression)
	if err != nil {
		return err
	}
	engineOpts := []indexer.Option{
		indexer.WithCodec(snapshot.NewCodec(compression)),
		indexer.WithReadConcurrency(cfg.Indexer.ReadConcurrency),
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.FileIndexed)
		defer producer.Close()
		engineOpts = append(engineOpts, indexer.WithPublisher(producer))
	}
	engine := indexer.NewEngine(st, engineOpts...)

	if cfg.Metrics.PushURL != "" {
		defer func() {
			if err := engine.Metrics().Push(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job, logger.RunID(ctx)); err != nil {
				log.Warn("failed to push metrics", "url", cfg.Metrics.PushURL, "error", err)
			}
		}()
	}

	if err := engine.Load(ctx); err != nil {
		return err
	}
	if err := index(ctx, engine, opts.inputs, stdin); err != nil {
		log.Error("input processing failed, repository state unchanged", "error", err)
		return err
	}
	saveErr := engine.Save(ctx)
	if saveErr != nil {
		log.Error("failed to save snapshot", "error", saveErr)
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return errors.Join(saveErr, fmt.Errorf("creating report file: %w", err))
		}
		defer f.Close()
		out = f
	}
	_, reportSpan := tracing.Start(ctx, "report")
	n, err := engine.Report(out, opts.format)
	reportSpan.Set("words", n)
	reportSpan.End()
	if err != nil {
		return errors.Join(saveErr, err)
	}
	log.Debug("report written", "words", n, "output", opts.output)
	return saveErr
}

func index(ctx context.Context, engine *indexer.Engine, inputs []string, stdin io.Reader) error {
	if len(inputs) == 1 && inputs[0] == stdinInput {
		_, err := engine.IndexReader(ctx, "stdin", stdin)
		return err
	}
	_, err := engine.IndexFiles(ctx, inputs)
	return err
}
