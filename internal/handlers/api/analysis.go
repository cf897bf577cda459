package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"sovdash/internal/analysis"
	"sovdash/internal/analyzer"
	"sovdash/internal/config"
	"sovdash/internal/logger"
	"sovdash/internal/metrics"
	"sovdash/internal/middleware"
	"sovdash/internal/models"
	"sovdash/internal/validation"
)


const invalidKeywordsMessage = "Invalid keywords format. Expected list of strings."

// AnalysisHandler runs analyses and serves their results.
type AnalysisHandler struct {
	runner  *analysis.Runner
	brands  *config.YAMLConfig
	timeout time.Duration
	log     *logrus.Entry
}

// NewAnalysisHandler creates a new analysis handler. A zero timeout disables
// the per-request deadline.
func NewAnalysisHandler(runner *analysis.Runner, brands *config.YAMLConfig, timeout time.Duration) *AnalysisHandler {
	if brands == nil {
		brands = config.Default()
	}
	return &AnalysisHandler{runner: runner, brands: brands, timeout: timeout, log: logger.For("api")}
}

func (h *AnalysisHandler) runContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Context())
	}
	return context.WithTimeout(c.Context(), h.timeout)
}

// Demo returns the fixed sample analysis.
func (h *AnalysisHandler) Demo(c fiber.Ctx) error {
	return c.JSON(analysis.Demo())
}

// Analyze runs a configurable brand analysis and returns the bare result.
func (h *AnalysisHandler) Analyze(c fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	keywords := validation.NormalizeKeywords(req.SearchKeywords)
	if len(keywords) == 0 {
		keywords = validation.NormalizeKeywords(h.brands.DefaultKeywords)
	}

	primary, competitors, err := h.resolveBrands(req)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	result, err := h.runner.Run(ctx, analysis.Request{
		Keywords:    keywords,
		NumResults:  validation.ClampNumResults(req.NumResults, h.brands.Analyzer.NumResults),
		Type:        models.AnalysisFull,
		Primary:     primary,
		Competitors: competitors,
	})
	if err != nil {
		metrics.RecordAnalysis("analyze", "error")
		middleware.Log(c, h.log).WithError(err).Error("Analysis failed")
		return jsonError(c, runStatus(err), "analysis failed: "+err.Error())
	}

	metrics.RecordAnalysis("analyze", "success")
	return c.JSON(result)
}

// resolveBrands picks the primary brand and competitors for an analyze request.
// JSON objects carry no key order, so without primary_brand the configured
// brand is used when present and the alphabetically first key otherwise.
func (h *AnalysisHandler) resolveBrands(req models.AnalyzeRequest) (analyzer.Brand, []analyzer.Brand, error) {
	brandKeywords := make(map[string][]string, len(req.BrandKeywords))
	for name, kws := range req.BrandKeywords {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		brandKeywords[name] = validation.NormalizeKeywords(kws)
	}
	if len(brandKeywords) == 0 && strings.TrimSpace(req.PrimaryBrand) == "" && len(req.Competitors) == 0 {
		return analyzer.Brand{}, nil, nil
	}

	names := make([]string, 0, len(brandKeywords))
	for name := range brandKeywords {
		names = append(names, name)
	}
	sort.Strings(names)

	primaryName := strings.ToLower(strings.TrimSpace(req.PrimaryBrand))
	if primaryName == "" {
		primaryName = h.brands.Brand.Name
		if _, ok := brandKeywords[primaryName]; !ok && len(names) > 0 {
			primaryName = names[0]
		}
	}
	if ok, msg := validation.ValidateBrand(primaryName); !ok {
		return analyzer.Brand{}, nil, errors.New(msg)
	}
	primary := brandFor(primaryName, brandKeywords)

	competitorNames := req.Competitors
	if len(competitorNames) == 0 {
		for _, name := range names {
			if name != primaryName {
				competitorNames = append(competitorNames, name)
			}
		}
	}
	if len(competitorNames) == 0 {
		competitorNames = h.brands.CompetitorNames()
	}

	seen := map[string]bool{primaryName: true}
	competitors := make([]analyzer.Brand, 0, len(competitorNames))
	for _, name := range competitorNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		if ok, msg := validation.ValidateBrand(name); !ok {
			return analyzer.Brand{}, nil, fmt.Errorf("competitor %q: %s", name, msg)
		}
		competitors = append(competitors, brandFor(name, brandKeywords))
	}
	return primary, competitors, nil
}

func brandFor(name string, brandKeywords map[string][]string) analyzer.Brand {
	kws := brandKeywords[name]
	if len(kws) == 0 {
		kws = []string{name}
	}
	return analyzer.Brand{Name: name, Keywords: kws}
}

// UserSearch runs an analysis for user-supplied keywords.
func (h *AnalysisHandler) UserSearch(c fiber.Ctx) error {
	var req models.UserSearchRequest
	if err := decodeBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.UserSearchResponse{Message: invalidKeywordsMessage})
	}

	keywords := validation.NormalizeKeywords(req.Keywords)
	if len(keywords) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.UserSearchResponse{Message: invalidKeywordsMessage})
	}

	typ, ok := models.ParseAnalysisType(req.AnalysisType)
	if !ok {
		middleware.Log(c, h.log).WithField("analysis_type", req.AnalysisType).Warn("Unknown analysis type, running full analysis")
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	result, err := h.runner.Run(ctx, analysis.Request{
		Keywords:   keywords,
		NumResults: validation.ClampNumResults(req.NumResults, validation.DefaultUserSearchResults),
		Type:       typ,
	})
	if err != nil {
		metrics.RecordAnalysis("user-search", "error")
		middleware.Log(c, h.log).WithError(err).Error("User search failed")
		return c.Status(runStatus(err)).JSON(models.UserSearchResponse{
			Message: "Error processing search: " + err.Error(),
		})
	}

	metrics.RecordAnalysis("user-search", "success")
	return c.JSON(models.UserSearchResponse{
		Success:   true,
		Data:      result,
		Message:   fmt.Sprintf("Analysis complete for %d keyword(s)", len(keywords)),
		Timestamp: result.Timestamp,
	})
}

// Latest returns the most recent analysis, or the demo data before any run.
func (h *AnalysisHandler) Latest(c fiber.Ctx) error {
	result, live := h.runner.LatestOrDemo(c.Context())
	return jsonSuccess(c, fiber.Map{
		"analysis": result,
		"demo":     !live,
	})
}

// Insights returns the aggregate insights of the latest analysis.
func (h *AnalysisHandler) Insights(c fiber.Ctx) error {
	result, _ := h.runner.LatestOrDemo(c.Context())
	insights := result.AggregateInsights
	if insights == nil {
		insights = &models.Insights{TopKeywords: []models.TopKeyword{}}
	}
	return jsonSuccess(c, insights)
}

// Competitors returns the primary brand's share next to each competitor's.
func (h *AnalysisHandler) Competitors(c fiber.Ctx) error {
	result, _ := h.runner.LatestOrDemo(c.Context())
	return jsonSuccess(c, models.CompetitorsResponse{
		PrimaryBrand: h.brands.Brand.Name,
		PrimarySoV:   result.OverallSoV,
		Competitors:  result.CompetitorSoV,
	})
}

// SoVBreakdown returns share of voice and rank per keyword of the latest analysis.
func (h *AnalysisHandler) SoVBreakdown(c fiber.Ctx) error {
	result, err := h.runner.Latest(c.Context())
	if err != nil {
		return h.latestError(c, err)
	}

	type entry struct {
		ShareOfVoice float64 `json:"share_of_voice"`
		Rank         int     `json:"rank"`
		MarketRank   int     `json:"market_rank"`
		Mentions     int     `json:"mentions"`
	}
	breakdown := make(map[string]entry, len(result.KeywordAnalysis))
	for _, ka := range result.KeywordAnalysis {
		breakdown[ka.Keyword] = entry{
			ShareOfVoice: ka.ShareOfVoice,
			Rank:         ka.Rank,
			MarketRank:   ka.MarketRank,
			Mentions:     ka.Mentions,
		}
	}
	return jsonSuccess(c, breakdown)
}

// SentimentBreakdown returns the sentiment split per keyword of the latest analysis.
// Keywords without sentiment data report zeros.
func (h *AnalysisHandler) SentimentBreakdown(c fiber.Ctx) error {
	result, err := h.runner.Latest(c.Context())
	if err != nil {
		return h.latestError(c, err)
	}

	sentiment := make(map[string]models.Sentiment, len(result.KeywordAnalysis))
	for _, ka := range result.KeywordAnalysis {
		var s models.Sentiment
		if ka.Sentiment != nil {
			s = *ka.Sentiment
		}
		sentiment[ka.Keyword] = s
	}
	return jsonSuccess(c, sentiment)
}

func (h *AnalysisHandler) latestError(c fiber.Ctx, err error) error {
	if errors.Is(err, analysis.ErrNoAnalysis) {
		return jsonError(c, fiber.StatusNotFound, "No analysis available")
	}
	middleware.Log(c, h.log).WithError(err).Error("Failed to load latest analysis")
	return jsonError(c, fiber.StatusInternalServerError, "failed to load analysis")
}
