package models

import "strings"

// AnalysisType selects how deep a user search goes.
type AnalysisType string

// Analysis type constants
const (
	AnalysisFull       AnalysisType = "full"
	AnalysisQuick      AnalysisType = "quick"
	AnalysisCompetitor AnalysisType = "competitor"
)

// ParseAnalysisType maps user input onto a known type. Empty or unknown input is "full".
func ParseAnalysisType(s string) (AnalysisType, bool) {
	switch AnalysisType(strings.ToLower(strings.TrimSpace(s))) {
	case AnalysisFull, "":
		return AnalysisFull, true
	case AnalysisQuick:
		return AnalysisQuick, true
	case AnalysisCompetitor:
		return AnalysisCompetitor, true
	default:
		return AnalysisFull, false
	}
}

// SearchHistoryEntry records one user search for later recall.
type SearchHistoryEntry struct {
	Timestamp    string       `json:"timestamp"`
	Keywords     []string     `json:"keywords"`
	AnalysisType AnalysisType `json:"analysis_type"`
	ResultsCount int          `json:"results_count"`
}
