// Package engine runs the lineage analysis over a combined Power Query
// source. It splits the source into documents, parses each one through a
// provider and assembles the per-step results.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pqdeps/internal/provider"
	"github.com/leapstack-labs/pqdeps/pkg/document"
	"github.com/leapstack-labs/pqdeps/pkg/lineage"
)

// DefaultConcurrency is the number of documents analyzed at once when
// Config.Concurrency is not set.
const DefaultConcurrency = 4

// ErrNoProvider is returned by New without a provider.
var ErrNoProvider = errors.New("engine requires a parse provider")

// Config holds engine configuration.
type Config struct {
	// Provider parses document text (required)
	Provider provider.Provider
	// Settings are passed to every Provider.Parse call
	Settings provider.Settings
	// Concurrency bounds parallel documents (default DefaultConcurrency)
	Concurrency int
	// Marker is the document header prefix (default "//")
	Marker string
	// DefaultName names a source without headers (default "Query1")
	DefaultName string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine analyzes combined sources. It is safe for concurrent use.
type Engine struct {
	provider    provider.Provider
	settings    provider.Settings
	concurrency int
	splitter    document.Splitter
	logger      *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Provider == nil {
		return nil, ErrNoProvider
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Engine{
		provider:    cfg.Provider,
		settings:    cfg.Settings,
		concurrency: concurrency,
		splitter:    document.Splitter{Marker: cfg.Marker, DefaultName: cfg.DefaultName},
		logger:      logger,
	}, nil
}

// Split validates combined and splits it into documents.
func (e *Engine) Split(combined string) ([]document.SourceDocument, error) {
	if err := document.Validate(combined); err != nil {
		return nil, err
	}
	return e.splitter.Split(combined), nil
}

// Analyze splits combined and analyzes every document. Invalid input is
// returned as an error before any document is parsed. A document that fails
// to parse or has the wrong shape is recorded in BatchResult.Failures and does
// not affect the others. Only cancellation of ctx aborts the batch.
func (e *Engine) Analyze(ctx context.Context, combined string) (*lineage.BatchResult, error) {
	docs, err := e.Split(combined)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeDocuments(ctx, docs)
}

type outcome struct {
	result  *lineage.QueryResult
	failure *lineage.DocumentFailure
}

// AnalyzeDocuments analyzes already split documents. Results keep the order
// of docs.
func (e *Engine) AnalyzeDocuments(ctx context.Context, docs []document.SourceDocument) (*lineage.BatchResult, error) {
	logger := e.logger.With("run_id", uuid.NewString())
	start := time.Now()
	logger.Debug("starting analysis", "documents", len(docs), "concurrency", e.concurrency)

	// Each worker writes only its own slot.
	outcomes := make([]outcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.analyzeDocument(gctx, logger, doc)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &lineage.BatchResult{
		Queries:  make([]*lineage.QueryResult, 0, len(docs)),
		Failures: []*lineage.DocumentFailure{},
	}
	for _, out := range outcomes {
		if out.failure != nil {
			batch.Failures = append(batch.Failures, out.failure)
			continue
		}
		batch.Queries = append(batch.Queries, out.result)
	}

	logger.Info("analysis complete",
		"documents", len(docs),
		"analyzed", len(batch.Queries),
		"failed", len(batch.Failures),
		"duration", time.Since(start),
	)
	return batch, nil
}

// analyzeDocument returns an error only when ctx was cancelled.
func (e *Engine) analyzeDocument(ctx context.Context, logger *slog.Logger, doc document.SourceDocument) (outcome, error) {
	logger = logger.With("document", doc.Name)

	root, err := e.provider.Parse(ctx, e.settings, doc.Code)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome{}, ctxErr
		}
		logger.Warn("document failed to parse", "error", err)
		return outcome{failure: &lineage.DocumentFailure{Document: doc.Name, Stage: lineage.StageParse, Err: err}}, nil
	}

	result, err := lineage.Assemble(doc, root)
	if err != nil {
		logger.Warn("document is not analyzable", "error", err)
		return outcome{failure: &lineage.DocumentFailure{Document: doc.Name, Stage: lineage.StageShape, Err: err}}, nil
	}

	live := 0
	for _, s := range result.Steps {
		if s.UsedForOutput {
			live++
		}
	}
	logger.Debug("document analyzed", "steps", len(result.Steps), "live", live, "output", result.Output)
	return outcome{result: result}, nil
}
