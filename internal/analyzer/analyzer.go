// Package analyzer computes raw per-keyword brand metrics. The dashboard treats
// it as an opaque data source with a fixed output schema.
package analyzer

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"sovdash/internal/models"
)

// Analyzer produces metrics for a single search keyword.
type Analyzer interface {
	Analyze(ctx context.Context, keyword string, opts Options) (*models.KeywordMetrics, error)
}

// Brand is a tracked brand and the phrases that count as a mention of it.
type Brand struct {
	Name     string
	Keywords []string
}

// Matches reports whether any of the brand's keywords occurs in lowered text.
func (b Brand) Matches(lowered string) bool {
	keywords := b.Keywords
	if len(keywords) == 0 {
		keywords = []string{b.Name}
	}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// Weights are the composite SoV weights for mention, engagement and positive voice.
type Weights struct {
	Mention    float64
	Engagement float64
	Positive   float64
}

// DefaultWeights is the standard 40/40/20 split.
var DefaultWeights = Weights{Mention: 0.4, Engagement: 0.4, Positive: 0.2}

func (w Weights) normalized() Weights {
	total := w.Mention + w.Engagement + w.Positive
	if total <= 0 {
		return DefaultWeights
	}
	return Weights{Mention: w.Mention / total, Engagement: w.Engagement / total, Positive: w.Positive / total}
}

// Options tune a single Analyze call. Zero values fall back to analyzer defaults.
type Options struct {
	NumResults  int
	Type        models.AnalysisType
	Primary     Brand
	Competitors []Brand
}

// QuickResultLimit caps results per keyword for quick analyses.
const QuickResultLimit = 5

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func keywordHash(keyword string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(keyword)))
	return h.Sum64()
}
