package report

import (
	"encoding/json"
	"time"

	"sovdash/internal/models"
)

// Metadata describes how and when a JSON report was produced.
type Metadata struct {
	GeneratedAt string `json:"generated_at"`
	Application string `json:"application"`
	Version     string `json:"version"`
}

// Document is the top-level shape of a JSON report.
type Document struct {
	Metadata     Metadata              `json:"metadata"`
	AnalysisData models.AnalysisResult `json:"analysis_data"`
}

func (g *Generator) renderJSON(result *models.AnalysisResult, now time.Time) ([]byte, error) {
	doc := Document{
		Metadata: Metadata{
			GeneratedAt: now.Format(time.RFC3339),
			Application: g.opts.AppName,
			Version:     g.opts.Version,
		},
		AnalysisData: *result,
	}
	return json.MarshalIndent(doc, "", "  ")
}
