package analysis

import (
	"sovdash/internal/aggregator"
	"sovdash/internal/models"
)

// DemoTimestamp is stamped on the demo result so repeated calls are identical.
const DemoTimestamp = "2025-01-01T00:00:00Z"

// Demo returns a fixed sample analysis of three keywords.
func Demo() *models.AnalysisResult {
	competitors := func(h, o, a, c, l float64) map[string]float64 {
		return map[string]float64{"havells": h, "orient": o, "agni": a, "carro": c, "luminous": l}
	}
	mentions := func(h, o, a, c, l int) map[string]int {
		return map[string]int{"havells": h, "orient": o, "agni": a, "carro": c, "luminous": l}
	}

	result := aggregator.Aggregate([]models.KeywordMetrics{
		{
			Keyword:            "smart fan",
			ShareOfVoice:       55.2,
			MarketRank:         2,
			Mentions:           120,
			Sentiment:          &models.Sentiment{Positive: 65, Neutral: 25, Negative: 10},
			CompetitorSoV:      competitors(45, 30, 15, 5, 5),
			CompetitorMentions: mentions(90, 60, 30, 10, 10),
		},
		{
			Keyword:            "WiFi fan",
			ShareOfVoice:       52.8,
			MarketRank:         2,
			Mentions:           110,
			Sentiment:          &models.Sentiment{Positive: 70, Neutral: 20, Negative: 10},
			CompetitorSoV:      competitors(48, 32, 12, 4, 4),
			CompetitorMentions: mentions(95, 65, 25, 8, 8),
		},
		{
			Keyword:            "ceiling fan",
			ShareOfVoice:       52.5,
			MarketRank:         2,
			Mentions:           105,
			Sentiment:          &models.Sentiment{Positive: 62, Neutral: 28, Negative: 10},
			CompetitorSoV:      competitors(46, 31, 14, 6, 6),
			CompetitorMentions: mentions(92, 62, 28, 12, 12),
		},
	})
	result.Timestamp = DemoTimestamp
	return &result
}
