package analyzer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sovdash/internal/models"
)

type contentTemplate struct {
	title   string
	snippet string
	label   string // empty means classify with the lexicon
}

// {brand} is replaced by the primary brand's display name.
var brandContent = []contentTemplate{
	{"{brand} Renesa Smart Ceiling Fan - WiFi Enabled", "Experience innovative cooling with {brand}'s WiFi-enabled ceiling fan. Energy efficient, smart control, and beautiful design.", LabelPositive},
	{"Why {brand} is the Best Smart Fan in India", "{brand} smart fans offer excellent value with automatic speed adjustment and mobile app control. Perfect for Indian climate.", LabelPositive},
	{"{brand} Smart Fan Review - Energy Savings", "Users report 40% energy savings with {brand} smart fans. WiFi connectivity and voice control features impress.", LabelPositive},
	{"Buy {brand} Smart Ceiling Fan Online", "Shop {brand} smart fans at best prices. Free installation, warranty, and customer support included.", LabelNeutral},
	{"{brand} vs Havells - Which Smart Fan is Better?", "{brand} offers better design and more affordable pricing compared to Havells. Both have good smart features.", LabelPositive},
}

var competitorContent = []contentTemplate{
	{"Havells SmartCool WiFi Ceiling Fan", "Havells brings premium quality smart fans with advanced features and reliable performance.", LabelNeutral},
	{"Orient Electric Smart Fans - Latest Models", "Orient offers smart ceiling fans with energy efficiency and sleek designs.", LabelNeutral},
	{"Ortem Smart Fan Technology", "Ortem smart fans are designed for modern homes with IoT integration.", LabelNeutral},
	{"Agni Smart Ceiling Fan - Affordable Option", "Agni provides budget-friendly smart fans for Indian households.", LabelNeutral},
	{"Luminous WiFi Enabled Ceiling Fan", "Luminous smart fans combine quality with smart technology at competitive prices.", LabelNeutral},
}

var generalContent = []contentTemplate{
	{"Smart Fans in India - Complete Buyer's Guide", "Comprehensive guide to smart ceiling fans. Compare features, prices, and benefits of top brands including {brand}, Havells, and Orient.", LabelNeutral},
	{"How WiFi Ceiling Fans Save Energy", "Smart fans with WiFi control can reduce energy consumption by up to 50%. Learn how automatic speed adjustment works.", LabelPositive},
	{"Best Smart Fans for Home Automation", "Integrate smart fans into your home automation system. Compatible with Alexa, Google Home, and more.", LabelPositive},
	{"IoT Ceiling Fans - Future of Home Cooling", "IoT-enabled ceiling fans are changing how we control home temperature and humidity.", ""},
	{"Smart Fan Installation Guide", "Step-by-step guide to installing and setting up your WiFi ceiling fan.", ""},
}

// result is one synthetic search hit.
type result struct {
	text     string // lowered title and snippet
	label    string
	likes    int
	comments int
	shares   int
	views    int
}

func (r result) engagement() int { return r.likes + r.comments + r.shares }

// MockConfig configures the demo analyzer.
type MockConfig struct {
	Primary     Brand
	Competitors []Brand
	Weights     Weights
	NumResults  int
	Seed        uint64  // 0 picks a time-based seed
	QPS         float64 // 0 or less disables throttling
}

// Mock generates realistic search results from fixed content templates and
// scores them. Output is deterministic for a given seed and keyword.
type Mock struct {
	cfg     MockConfig
	limiter *rate.Limiter
	lexicon Lexicon
}

// NewMock creates a Mock analyzer.
func NewMock(cfg MockConfig) *Mock {
	if cfg.Primary.Name == "" {
		cfg.Primary = Brand{Name: "atomberg"}
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = 20
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	cfg.Weights = cfg.Weights.normalized()

	limit := rate.Inf
	if cfg.QPS > 0 {
		limit = rate.Limit(cfg.QPS)
	}
	return &Mock{cfg: cfg, limiter: rate.NewLimiter(limit, 1)}
}

// Analyze implements Analyzer.
func (m *Mock) Analyze(ctx context.Context, keyword string, opts Options) (*models.KeywordMetrics, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("analyze %q: %w", keyword, err)
	}

	primary, competitors := m.cfg.Primary, m.cfg.Competitors
	if opts.Primary.Name != "" {
		primary = opts.Primary
		competitors = opts.Competitors
	}

	n := opts.NumResults
	if n <= 0 {
		n = m.cfg.NumResults
	}
	if opts.Type == models.AnalysisQuick && n > QuickResultLimit {
		n = QuickResultLimit
	}

	rng := rand.New(rand.NewPCG(m.cfg.Seed, keywordHash(keyword)))
	results := m.search(rng, primary, opts.Type, n)

	return m.score(keyword, results, primary, competitors), nil
}

func (m *Mock) search(rng *rand.Rand, primary Brand, typ models.AnalysisType, n int) []result {
	brandShare, competitorShare := 0.4, 0.35
	if typ == models.AnalysisCompetitor {
		brandShare, competitorShare = 0.25, 0.5
	}

	var picked []contentTemplate
	picked = append(picked, take(brandContent, n, brandShare)...)
	picked = append(picked, take(competitorContent, n, competitorShare)...)
	picked = append(picked, take(generalContent, n, 0.25)...)
	rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > n {
		picked = picked[:n]
	}

	display := displayName(primary.Name)
	out := make([]result, 0, len(picked))
	for _, tpl := range picked {
		text := strings.ReplaceAll(tpl.title+" "+tpl.snippet, "{brand}", display)
		label := tpl.label
		if label == "" {
			label = m.lexicon.Classify(text)
		}
		out = append(out, result{
			text:     strings.ToLower(text),
			label:    label,
			likes:    10 + rng.IntN(491),
			comments: 2 + rng.IntN(99),
			shares:   rng.IntN(51),
			views:    100 + rng.IntN(9901),
		})
	}
	return out
}

func take(pool []contentTemplate, n int, share float64) []contentTemplate {
	count := max(1, int(float64(n)*share))
	return pool[:min(count, len(pool))]
}

type brandTally struct {
	mentions   int
	engagement int
	positive   int
}

func (m *Mock) score(keyword string, results []result, primary Brand, competitors []Brand) *models.KeywordMetrics {
	metrics := &models.KeywordMetrics{
		Keyword:      keyword,
		ResultsCount: len(results),
	}

	brands := append([]Brand{primary}, competitors...)
	tallies := make([]brandTally, len(brands))
	labels := map[string]int{}

	for _, r := range results {
		labels[r.label]++
		metrics.Engagement.Likes += r.likes
		metrics.Engagement.Comments += r.comments
		metrics.Engagement.Shares += r.shares
		metrics.Engagement.Views += r.views

		for i, b := range brands {
			if !b.Matches(r.text) {
				continue
			}
			tallies[i].mentions++
			tallies[i].engagement += r.engagement()
			if r.label == LabelPositive {
				tallies[i].positive++
			}
		}
	}

	if len(results) > 0 {
		total := float64(len(results))
		metrics.Sentiment = &models.Sentiment{
			Positive: round2(float64(labels[LabelPositive]) / total * 100),
			Neutral:  round2(float64(labels[LabelNeutral]) / total * 100),
			Negative: round2(float64(labels[LabelNegative]) / total * 100),
		}
	}

	var totalMentions, totalEngagement, totalPositive int
	for _, t := range tallies {
		totalMentions += t.mentions
		totalEngagement += t.engagement
		totalPositive += t.positive
	}

	w := m.cfg.Weights
	composite := make([]float64, len(brands))
	for i, t := range tallies {
		composite[i] = round2(
			share(t.mentions, totalMentions)*w.Mention +
				share(t.engagement, totalEngagement)*w.Engagement +
				share(t.positive, totalPositive)*w.Positive)
	}

	metrics.ShareOfVoice = composite[0]
	metrics.Mentions = tallies[0].mentions
	metrics.MarketRank = 1
	for i := 1; i < len(brands); i++ {
		if composite[i] > composite[0] {
			metrics.MarketRank++
		}
		if tallies[i].mentions == 0 {
			continue
		}
		if metrics.CompetitorSoV == nil {
			metrics.CompetitorSoV = map[string]float64{}
			metrics.CompetitorMentions = map[string]int{}
		}
		metrics.CompetitorSoV[brands[i].Name] = composite[i]
		metrics.CompetitorMentions[brands[i].Name] += tallies[i].mentions
	}

	return metrics
}

func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func displayName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
