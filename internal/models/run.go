package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun is a persisted analysis with the inputs that produced it.
type AnalysisRun struct {
	ID           uuid.UUID      `json:"id"`
	Keywords     []string       `json:"keywords"`
	AnalysisType AnalysisType   `json:"analysis_type"`
	Result       AnalysisResult `json:"result"`
	CreatedAt    time.Time      `json:"created_at"`
}

// KeywordSearch represents a per-keyword search count by analysis type.
type KeywordSearch struct {
	Keyword      string
	AnalysisType string
	Count        int64
	LastSeenAt   time.Time
}

// RunSummary is the listing form of an AnalysisRun.
type RunSummary struct {
	ID               uuid.UUID    `json:"id"`
	Keywords         []string     `json:"keywords"`
	AnalysisType     AnalysisType `json:"analysis_type"`
	OverallSoV       float64      `json:"overall_sov"`
	KeywordsAnalyzed int          `json:"keywords_analyzed"`
	CreatedAt        time.Time    `json:"created_at"`
}
