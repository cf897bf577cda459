// Package aggregator folds per-keyword analyzer output into one AnalysisResult.
package aggregator

import (
	"math"
	"sort"
	"strings"

	"sovdash/internal/models"
)

// TopKeywordLimit is the number of keywords listed in Insights.
const TopKeywordLimit = 5

// Round rounds v to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate combines per-keyword metrics into a run-level result. Input order
// is preserved in keyword_analysis; a repeated keyword keeps its first position
// and takes the last value. Empty input yields a zero-valued result.
func Aggregate(metrics []models.KeywordMetrics) models.AnalysisResult {
	metrics = dedupe(metrics)

	result := models.AnalysisResult{
		KeywordAnalysis: make([]models.KeywordAnalysis, 0, len(metrics)),
		CompetitorSoV:   []models.CompetitorShare{},
		AggregateInsights: &models.Insights{
			TopKeywords: []models.TopKeyword{},
		},
	}
	if len(metrics) == 0 {
		return result
	}

	ranks := make(map[string]int, len(metrics))
	for i, tk := range TopKeywords(metrics, len(metrics)) {
		ranks[tk.Keyword] = i + 1
	}

	var sovSum, positiveSum float64
	for _, m := range metrics {
		sovSum += m.ShareOfVoice
		if m.Sentiment != nil {
			positiveSum += m.Sentiment.Positive
		}
		result.TotalMentions += m.Mentions

		ka := models.KeywordAnalysis{
			Keyword:      m.Keyword,
			ShareOfVoice: Round(m.ShareOfVoice),
			Rank:         ranks[m.Keyword],
			Mentions:     m.Mentions,
			MarketRank:   m.MarketRank,
		}
		if m.Sentiment != nil {
			s := *m.Sentiment
			ka.Sentiment = &s
		}
		result.KeywordAnalysis = append(result.KeywordAnalysis, ka)
	}

	n := float64(len(metrics))
	result.KeywordsAnalyzed = len(metrics)
	result.OverallSoV = Round(sovSum / n)
	result.AverageSentiment = Round(positiveSum / n)
	result.CompetitorSoV = competitorShares(metrics)

	result.AggregateInsights = &models.Insights{
		AverageSoV:         result.OverallSoV,
		KeywordsAnalyzed:   result.KeywordsAnalyzed,
		TopKeywords:        TopKeywords(metrics, TopKeywordLimit),
		CompetitorMentions: competitorMentions(metrics),
	}
	return result
}

// TopKeywords returns up to n keywords ordered by SoV desc, mentions desc,
// then keyword asc.
func TopKeywords(metrics []models.KeywordMetrics, n int) []models.TopKeyword {
	sorted := make([]models.KeywordMetrics, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ShareOfVoice != b.ShareOfVoice {
			return a.ShareOfVoice > b.ShareOfVoice
		}
		if a.Mentions != b.Mentions {
			return a.Mentions > b.Mentions
		}
		return a.Keyword < b.Keyword
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]models.TopKeyword, 0, max(n, 0))
	for _, m := range sorted[:max(n, 0)] {
		out = append(out, models.TopKeyword{
			Keyword:      m.Keyword,
			ShareOfVoice: Round(m.ShareOfVoice),
			Mentions:     m.Mentions,
		})
	}
	return out
}

func dedupe(metrics []models.KeywordMetrics) []models.KeywordMetrics {
	index := make(map[string]int, len(metrics))
	out := make([]models.KeywordMetrics, 0, len(metrics))
	for _, m := range metrics {
		key := strings.ToLower(m.Keyword)
		if i, ok := index[key]; ok {
			keyword := out[i].Keyword
			out[i] = m
			out[i].Keyword = keyword
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}
	return out
}

// competitorShares averages each competitor's SoV over the keywords it appears in.
func competitorShares(metrics []models.KeywordMetrics) []models.CompetitorShare {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, m := range metrics {
		for brand, sov := range m.CompetitorSoV {
			sums[brand] += sov
			counts[brand]++
		}
	}

	out := make([]models.CompetitorShare, 0, len(sums))
	for brand, sum := range sums {
		out = append(out, models.CompetitorShare{Brand: brand, SoV: Round(sum / float64(counts[brand]))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoV != out[j].SoV {
			return out[i].SoV > out[j].SoV
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}

func competitorMentions(metrics []models.KeywordMetrics) map[string]int {
	var out map[string]int
	for _, m := range metrics {
		for brand, n := range m.CompetitorMentions {
			if out == nil {
				out = map[string]int{}
			}
			out[brand] += n
		}
	}
	return out
}
