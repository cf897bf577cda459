// Package jobs runs background maintenance for the API server.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Pruner deletes all but the most recent runs.
type Pruner interface {
	PruneRuns(ctx context.Context, keep int) (int64, error)
}

// RunRetention periodically trims stored analysis runs to a fixed count.
type RunRetention struct {
	store    Pruner
	keep     int
	interval time.Duration
	log      *logrus.Entry
}

// NewRunRetention creates a retention job keeping the keep newest runs.
func NewRunRetention(store Pruner, keep int, interval time.Duration, log *logrus.Entry) *RunRetention {
	return &RunRetention{store: store, keep: keep, interval: interval, log: log}
}

// Start prunes once immediately and then every interval until ctx is done.
func (r *RunRetention) Start(ctx context.Context) {
	r.log.WithFields(logrus.Fields{
		"keep":     r.keep,
		"interval": r.interval,
	}).Info("Run retention started")

	r.PruneOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Run retention stopped")
			return
		case <-ticker.C:
			r.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single pass and returns the number of runs removed.
func (r *RunRetention) PruneOnce(ctx context.Context) int64 {
	n, err := r.store.PruneRuns(ctx, r.keep)
	if err != nil {
		if ctx.Err() == nil {
			r.log.WithError(err).Error("Failed to prune analysis runs")
		}
		return 0
	}
	if n > 0 {
		r.log.WithField("removed", n).Info("Pruned analysis runs")
	}
	return n
}
