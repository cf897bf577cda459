// Package analysis runs keyword searches through the analyzer and keeps the
// latest result available to the API.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sovdash/internal/aggregator"
	"sovdash/internal/analyzer"
	"sovdash/internal/db"
	"sovdash/internal/metrics"
	"sovdash/internal/models"
	"sovdash/internal/storage"
)

// LatestKey is the storage key of the cached latest result.
const LatestKey = "sov:latest_analysis"

// Errors returned by the runner.
var (
	ErrNoKeywords = errors.New("no keywords to analyze")
	ErrNoAnalysis = errors.New("no analysis available")
)

// RunStore persists completed runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
	LatestRun(ctx context.Context) (*models.AnalysisRun, error)
}

// Request describes one analysis run.
type Request struct {
	Keywords    []string
	NumResults  int
	Type        models.AnalysisType
	Primary     analyzer.Brand // zero value uses the analyzer's configured brands
	Competitors []analyzer.Brand
}

// Runner executes analyses. It is safe for concurrent use.
type Runner struct {
	analyzer analyzer.Analyzer
	store    RunStore
	cache    storage.Storage
	log      *logrus.Entry
	now      func() time.Time
}

// NewRunner creates a Runner. cache may be nil.
func NewRunner(a analyzer.Analyzer, store RunStore, cache storage.Storage, log *logrus.Entry) *Runner {
	return &Runner{analyzer: a, store: store, cache: cache, log: log, now: time.Now}
}

// Run analyzes each keyword in order, aggregates the results and records the run.
// Persistence failures are logged; only analyzer and context errors fail the run.
func (r *Runner) Run(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	if len(req.Keywords) == 0 {
		return nil, ErrNoKeywords
	}
	typ := req.Type
	if typ == "" {
		typ = models.AnalysisFull
	}

	start := r.now()
	opts := analyzer.Options{
		NumResults:  req.NumResults,
		Type:        typ,
		Primary:     req.Primary,
		Competitors: req.Competitors,
	}

	perKeyword := make([]models.KeywordMetrics, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.analyzer.Analyze(ctx, kw, opts)
		if err != nil {
			return nil, fmt.Errorf("analyze keyword %q: %w", kw, err)
		}
		perKeyword = append(perKeyword, *m)
	}

	result := aggregator.Aggregate(perKeyword)
	result.Timestamp = r.now().UTC().Format(time.RFC3339)

	run := &models.AnalysisRun{Keywords: req.Keywords, AnalysisType: typ, Result: result}
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.log.WithError(err).Warn("Failed to save analysis run")
	}
	for _, kw := range req.Keywords {
		metrics.RecordKeywordSearch(kw, typ)
	}
	r.cacheLatest(&result)

	r.log.WithFields(logrus.Fields{
		"keywords":      len(req.Keywords),
		"analysis_type": typ,
		"overall_sov":   result.OverallSoV,
		"duration":      r.now().Sub(start).String(),
	}).Info("Analysis complete")

	return &result, nil
}

func (r *Runner) cacheLatest(result *models.AnalysisResult) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		r.log.WithError(err).Warn("Failed to encode latest analysis")
		return
	}
	if err := r.cache.Set(LatestKey, data, 0); err != nil {
		r.log.WithError(err).Warn("Failed to cache latest analysis")
	}
}

// Latest returns the most recent analysis from the cache or the run store.
// It returns ErrNoAnalysis when nothing has been run yet.
func (r *Runner) Latest(ctx context.Context) (*models.AnalysisResult, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(LatestKey)
		if err != nil {
			r.log.WithError(err).Warn("Failed to read cached analysis")
		} else if len(raw) > 0 {
			var result models.AnalysisResult
			if err := json.Unmarshal(raw, &result); err == nil {
				return &result, nil
			}
			r.log.Warn("Cached analysis is corrupt, falling back to run store")
		}
	}

	run, err := r.store.LatestRun(ctx)
	if errors.Is(err, db.ErrRunNotFound) {
		return nil, ErrNoAnalysis
	}
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	r.cacheLatest(&run.Result)
	return &run.Result, nil
}

// LatestOrDemo returns the latest analysis, or demo data if none exists.
func (r *Runner) LatestOrDemo(ctx context.Context) (*models.AnalysisResult, bool) {
	result, err := r.Latest(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoAnalysis) {
			r.log.WithError(err).Warn("Falling back to demo data")
		}
		return Demo(), false
	}
	return result, true
}
