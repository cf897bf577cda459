// Package testutil provides test utilities and helpers.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/analyzer"
	"sovdash/internal/config"
	"sovdash/internal/db"
	"sovdash/internal/logger"
	"sovdash/internal/models"
	"sovdash/internal/storage"
)

// Env bundles an analysis runner with its in-memory backends.
type Env struct {
	Runner *analysis.Runner
	Store  *db.Memory
	Cache  *storage.Memory
	Brands *config.YAMLConfig
}

// NewEnv creates a runner over the seeded mock analyzer and in-memory stores.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	brands := config.Default()
	competitors := make([]analyzer.Brand, 0, len(brands.Competitors))
	for _, c := range brands.Competitors {
		competitors = append(competitors, analyzer.Brand{Name: c.Name, Keywords: c.Keywords})
	}
	mock := analyzer.NewMock(analyzer.MockConfig{
		Primary:     analyzer.Brand{Name: brands.Brand.Name, Keywords: brands.Brand.Keywords},
		Competitors: competitors,
		NumResults:  brands.Analyzer.NumResults,
		Seed:        42,
	})

	store := db.NewMemory()
	cache := storage.NewMemory()
	return &Env{
		Runner: analysis.NewRunner(mock, store, cache, logger.Discard()),
		Store:  store,
		Cache:  cache,
		Brands: brands,
	}
}

// SampleResult returns a small two-keyword analysis.
func SampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		OverallSoV:       47.5,
		AverageSentiment: 61,
		KeywordsAnalyzed: 2,
		TotalMentions:    19,
		KeywordAnalysis: []models.KeywordAnalysis{
			{Keyword: "smart fan", ShareOfVoice: 55, Rank: 1, Mentions: 11, Sentiment: &models.Sentiment{Positive: 62, Neutral: 28, Negative: 10}},
			{Keyword: "wifi fan", ShareOfVoice: 40, Rank: 2, Mentions: 8, Sentiment: &models.Sentiment{Positive: 60, Neutral: 30, Negative: 10}},
		},
		CompetitorSoV: []models.CompetitorShare{{Brand: "havells", SoV: 30}, {Brand: "orient", SoV: 22.5}},
	}
}

// DoJSON sends a request to app with body encoded as JSON, or sent as-is when
// it is a string. It returns the response and its body.
func DoJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}
