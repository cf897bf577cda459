package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/analyzer"
	"sovdash/internal/db"
	"sovdash/internal/logger"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/storage"
	"sovdash/internal/testutil"
)

func newTestApp(t *testing.T, runner *analysis.Runner, timeout time.Duration) *fiber.App {
	t.Helper()
	gen, err := report.New(report.Options{})
	if err != nil {
		t.Fatal(err)
	}

	env := testutil.NewEnv(t)
	if runner == nil {
		runner = env.Runner
	}
	ah := NewAnalysisHandler(runner, env.Brands, timeout)
	rh := NewReportHandler(gen, runner)
	hh := NewHealthHandler(runner, env.Brands, "1.0.0")

	app := fiber.New()
	app.Get("/api/demo", ah.Demo)
	app.Post("/api/analyze", ah.Analyze)
	app.Post("/api/user-search", ah.UserSearch)
	app.Get("/api/analysis", ah.Latest)
	app.Get("/api/insights", ah.Insights)
	app.Get("/api/competitors", ah.Competitors)
	app.Get("/api/sov-breakdown", ah.SoVBreakdown)
	app.Get("/api/sentiment-analysis", ah.SentimentBreakdown)
	app.Post("/api/generate-report", rh.Generate)
	app.Get("/api/reports/:format", rh.Download)
	app.Get("/api/health", hh.Health)
	app.Get("/api/status", hh.Status)
	app.Get("/api/config", hh.Config)
	return app
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error"`
}

func TestDemo(t *testing.T) {
	app := newTestApp(t, nil, 0)

	resp, body := testutil.DoJSON(t, app, http.MethodGet, "/api/demo", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	result := decode[models.AnalysisResult](t, body)
	if result.KeywordsAnalyzed != 3 || len(result.KeywordAnalysis) != 3 || result.OverallSoV != 53.5 {
		t.Errorf("demo = %+v", result)
	}
}

func TestUserSearch(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantRows   []string
	}{
		{
			name:       "two keywords",
			body:       models.UserSearchRequest{Keywords: []string{"smart fan", "wifi fan"}, NumResults: 10, AnalysisType: "full"},
			wantStatus: fiber.StatusOK,
			wantRows:   []string{"smart fan", "wifi fan"},
		},
		{
			name:       "num_results clamped",
			body:       models.UserSearchRequest{Keywords: []string{"bldc fan"}, NumResults: 500, AnalysisType: "quick"},
			wantStatus: fiber.StatusOK,
			wantRows:   []string{"bldc fan"},
		},
		{
			name:       "keywords not a list",
			body:       `{"keywords": "smart fan"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "empty list",
			body:       models.UserSearchRequest{Keywords: []string{}},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "blank keywords",
			body:       models.UserSearchRequest{Keywords: []string{" ", ""}},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "no body",
			body:       nil,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil, time.Minute)
			resp, body := testutil.DoJSON(t, app, http.MethodPost, "/api/user-search", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}

			out := decode[models.UserSearchResponse](t, body)
			if tt.wantStatus != fiber.StatusOK {
				if out.Success || out.Message != invalidKeywordsMessage {
					t.Errorf("response = %+v", out)
				}
				return
			}

			if !out.Success || out.Data == nil {
				t.Fatalf("response = %+v", out)
			}
			if out.Data.KeywordsAnalyzed != len(tt.wantRows) {
				t.Errorf("keywords_analyzed = %d", out.Data.KeywordsAnalyzed)
			}
			for i, ka := range out.Data.KeywordAnalysis {
				if ka.Keyword != tt.wantRows[i] {
					t.Errorf("row %d = %q, want %q", i, ka.Keyword, tt.wantRows[i])
				}
			}
		})
	}
}

func TestUserSearch_Message(t *testing.T) {
	app := newTestApp(t, nil, time.Minute)
	_, body := testutil.DoJSON(t, app, http.MethodPost, "/api/user-search",
		models.UserSearchRequest{Keywords: []string{"smart fan", "wifi fan"}})

	if out := decode[models.UserSearchResponse](t, body); out.Message != "Analysis complete for 2 keyword(s)" || out.Timestamp == "" {
		t.Errorf("response = %+v", out)
	}
}

type blockingAnalyzer struct{}

func (blockingAnalyzer) Analyze(ctx context.Context, _ string, _ analyzer.Options) (*models.KeywordMetrics, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestUserSearch_Timeout(t *testing.T) {
	runner := analysis.NewRunner(blockingAnalyzer{}, db.NewMemory(), storage.NewMemory(), logger.Discard())
	app := newTestApp(t, runner, 20*time.Millisecond)

	resp, body := testutil.DoJSON(t, app, http.MethodPost, "/api/user-search",
		models.UserSearchRequest{Keywords: []string{"smart fan"}})
	if resp.StatusCode != fiber.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504: %s", resp.StatusCode, body)
	}
	if out := decode[models.UserSearchResponse](t, body); out.Success {
		t.Error("timed out search reported success")
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		body         any
		wantStatus   int
		wantKeywords int
	}{
		{
			name:         "defaults",
			body:         nil,
			wantStatus:   fiber.StatusOK,
			wantKeywords: 3,
		},
		{
			name: "custom brands",
			body: models.AnalyzeRequest{
				BrandKeywords:  map[string][]string{"atomberg": {"atomberg"}, "havells": {"havells"}},
				SearchKeywords: []string{"smart fan"},
			},
			wantStatus:   fiber.StatusOK,
			wantKeywords: 1,
		},
		{
			name: "explicit primary and competitors",
			body: models.AnalyzeRequest{
				PrimaryBrand:   "orient",
				SearchKeywords: []string{"ceiling fan", "bldc fan"},
				Competitors:    []string{"havells", "atomberg"},
			},
			wantStatus:   fiber.StatusOK,
			wantKeywords: 2,
		},
		{
			name:       "invalid brand",
			body:       models.AnalyzeRequest{PrimaryBrand: "<script>"},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"search_keywords": 5}`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil, time.Minute)
			resp, body := testutil.DoJSON(t, app, http.MethodPost, "/api/analyze", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantStatus != fiber.StatusOK {
				if env := decode[envelope[any]](t, body); env.Status != "error" || env.Error == "" {
					t.Errorf("error body = %s", body)
				}
				return
			}
			if result := decode[models.AnalysisResult](t, body); result.KeywordsAnalyzed != tt.wantKeywords {
				t.Errorf("keywords_analyzed = %d, want %d", result.KeywordsAnalyzed, tt.wantKeywords)
			}
		})
	}
}

func TestResolveBrands(t *testing.T) {
	h := NewAnalysisHandler(nil, nil, 0)

	primary, competitors, err := h.resolveBrands(models.AnalyzeRequest{
		BrandKeywords: map[string][]string{"Zeta": {"zeta fan"}, "beta": nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	if primary.Name != "beta" || primary.Keywords[0] != "beta" {
		t.Errorf("primary = %+v, want alphabetically first key", primary)
	}
	if len(competitors) != 1 || competitors[0].Name != "zeta" || competitors[0].Keywords[0] != "zeta fan" {
		t.Errorf("competitors = %+v", competitors)
	}

	primary, _, _ = h.resolveBrands(models.AnalyzeRequest{
		BrandKeywords: map[string][]string{"atomberg": {"atomberg"}, "agni": {"agni"}},
	})
	if primary.Name != "atomberg" {
		t.Errorf("primary = %q, want the configured brand", primary.Name)
	}
}

func TestGenerateReport(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
		wantFormat string
	}{
		{"missing data", models.GenerateReportRequest{Format: "csv"}, fiber.StatusBadRequest, "no analysis data", ""},
		{"unsupported format", models.GenerateReportRequest{AnalysisData: testutil.SampleResult(), Format: "pdf"}, fiber.StatusBadRequest, "Unsupported format", ""},
		{"csv", models.GenerateReportRequest{AnalysisData: testutil.SampleResult(), Format: "csv"}, fiber.StatusOK, "", "csv"},
		{"txt", models.GenerateReportRequest{AnalysisData: testutil.SampleResult(), Format: "txt"}, fiber.StatusOK, "", "txt"},
		{"json", models.GenerateReportRequest{AnalysisData: testutil.SampleResult(), Format: "json"}, fiber.StatusOK, "", "json"},
		{"default html", models.GenerateReportRequest{AnalysisData: testutil.SampleResult()}, fiber.StatusOK, "", "html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil, 0)
			resp, body := testutil.DoJSON(t, app, http.MethodPost, "/api/generate-report", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantError != "" {
				if env := decode[envelope[any]](t, body); env.Error != tt.wantError {
					t.Errorf("error = %q, want %q", env.Error, tt.wantError)
				}
				return
			}

			out := decode[models.GenerateReportResponse](t, body)
			if out.Format != tt.wantFormat {
				t.Errorf("format = %q", out.Format)
			}
			if !strings.HasPrefix(out.Filename, report.FilenamePrefix) || !strings.HasSuffix(out.Filename, "."+tt.wantFormat) {
				t.Errorf("filename = %q", out.Filename)
			}
			if !strings.Contains(out.Content, "smart fan") {
				t.Errorf("content does not mention keywords:\n%s", out.Content)
			}
		})
	}
}

func TestStatusAndHealth(t *testing.T) {
	app := newTestApp(t, nil, time.Minute)

	_, body := testutil.DoJSON(t, app, http.MethodGet, "/api/health", nil)
	if h := decode[models.HealthResponse](t, body); h.Status != "online" || h.HasAnalysis {
		t.Errorf("health before run = %+v", h)
	}
	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/status", nil)
	if s := decode[models.StatusResponse](t, body); s.Status != "ready" || s.AnalysisAvailable || s.Version != "1.0.0" {
		t.Errorf("status before run = %+v", s)
	}

	testutil.DoJSON(t, app, http.MethodPost, "/api/user-search", models.UserSearchRequest{Keywords: []string{"smart fan"}})

	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/health", nil)
	if h := decode[models.HealthResponse](t, body); !h.HasAnalysis {
		t.Errorf("health after run = %+v", h)
	}
	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/status", nil)
	if s := decode[models.StatusResponse](t, body); !s.AnalysisAvailable || s.LastUpdate == "" {
		t.Errorf("status after run = %+v", s)
	}
}

func TestConfig(t *testing.T) {
	app := newTestApp(t, nil, 0)

	_, body := testutil.DoJSON(t, app, http.MethodGet, "/api/config", nil)
	cfg := decode[models.ConfigResponse](t, body)
	if cfg.PrimaryBrand != "atomberg" || len(cfg.DefaultKeywords) != 3 || len(cfg.DefaultBrands) != 7 {
		t.Errorf("config = %+v", cfg)
	}
	if strings.Join(cfg.ReportFormats, ",") != "html,json,csv,txt" {
		t.Errorf("report formats = %v", cfg.ReportFormats)
	}
	if strings.Join(cfg.AnalysisTypes, ",") != "full,quick,competitor" {
		t.Errorf("analysis types = %v", cfg.AnalysisTypes)
	}
}

func TestLatestAndBreakdowns(t *testing.T) {
	app := newTestApp(t, nil, time.Minute)

	_, body := testutil.DoJSON(t, app, http.MethodGet, "/api/analysis", nil)
	if env := decode[envelope[struct {
		Analysis models.AnalysisResult `json:"analysis"`
		Demo     bool                  `json:"demo"`
	}]](t, body); !env.Data.Demo || env.Data.Analysis.KeywordsAnalyzed != 3 {
		t.Errorf("latest before run = %s", body)
	}

	for _, path := range []string{"/api/sov-breakdown", "/api/sentiment-analysis", "/api/reports/json"} {
		if resp, _ := testutil.DoJSON(t, app, http.MethodGet, path, nil); resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s before run = %d, want 404", path, resp.StatusCode)
		}
	}

	testutil.DoJSON(t, app, http.MethodPost, "/api/user-search", models.UserSearchRequest{Keywords: []string{"smart fan", "wifi fan"}})

	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/sov-breakdown", nil)
	breakdown := decode[envelope[map[string]struct {
		Rank int `json:"rank"`
	}]](t, body)
	if len(breakdown.Data) != 2 || breakdown.Data["smart fan"].Rank == 0 {
		t.Errorf("breakdown = %s", body)
	}

	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/sentiment-analysis", nil)
	if s := decode[envelope[map[string]models.Sentiment]](t, body); !s.Data["wifi fan"].IsBalanced() {
		t.Errorf("sentiment = %s", body)
	}

	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/insights", nil)
	if in := decode[envelope[models.Insights]](t, body); in.Data.KeywordsAnalyzed != 2 || len(in.Data.TopKeywords) != 2 {
		t.Errorf("insights = %s", body)
	}

	_, body = testutil.DoJSON(t, app, http.MethodGet, "/api/competitors", nil)
	if c := decode[envelope[models.CompetitorsResponse]](t, body); c.Data.PrimaryBrand != "atomberg" {
		t.Errorf("competitors = %s", body)
	}

	resp, body := testutil.DoJSON(t, app, http.MethodGet, "/api/reports/csv", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(cd, report.FilenamePrefix) || !strings.Contains(cd, ".csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(string(body), "KEYWORD ANALYSIS") {
		t.Errorf("csv body = %s", body)
	}
}

func TestListRuns(t *testing.T) {
	env := testutil.NewEnv(t)
	app := fiber.New()
	app.Get("/api/runs", NewRunsHandler(env.Store).List)

	_, body := testutil.DoJSON(t, app, http.MethodGet, "/api/runs", nil)
	if out := decode[envelope[[]models.RunSummary]](t, body); out.Status != "ok" || len(out.Data) != 0 {
		t.Fatalf("empty store = %s", body)
	}

	ctx := context.Background()
	for _, kws := range [][]string{{"smart fan"}, {"smart fan", "wifi fan"}, {"bldc fan"}} {
		if _, err := env.Runner.Run(ctx, analysis.Request{Keywords: kws, NumResults: 5, Type: models.AnalysisQuick}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default limit", "", 3},
		{"limit", "?limit=2", 2},
		{"zero uses default", "?limit=0", 3},
		{"not a number", "?limit=lots", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := testutil.DoJSON(t, app, http.MethodGet, "/api/runs"+tt.query, nil)
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			runs := decode[envelope[[]models.RunSummary]](t, body).Data
			if len(runs) != tt.want {
				t.Fatalf("runs = %d, want %d", len(runs), tt.want)
			}
			if runs[0].Keywords[0] != "bldc fan" || runs[0].KeywordsAnalyzed != 1 || runs[0].AnalysisType != models.AnalysisQuick {
				t.Errorf("newest run = %+v", runs[0])
			}
		})
	}
}
