package models

import "math"

// Sentiment is the percentage breakdown of positive, neutral and negative
// mentions for one keyword. The three values sum to roughly 100.
type Sentiment struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sum returns the total of all three percentages.
func (s Sentiment) Sum() float64 {
	return s.Positive + s.Neutral + s.Negative
}

// IsBalanced reports whether the percentages add up to 100 within rounding error.
func (s Sentiment) IsBalanced() bool {
	return math.Abs(s.Sum()-100) <= 1
}

// KeywordAnalysis is the per-keyword bundle shown in tables and reports.
type KeywordAnalysis struct {
	Keyword      string     `json:"keyword"`
	ShareOfVoice float64    `json:"share_of_voice"`
	Rank         int        `json:"rank"`                  // position by SoV across the run, 1 is best
	Mentions     int        `json:"mentions"`
	Sentiment    *Sentiment `json:"sentiment,omitempty"`
	MarketRank   int        `json:"market_rank,omitempty"` // brand position among competitors for this keyword
}

// CompetitorShare is one competitor's share of voice.
type CompetitorShare struct {
	Brand string  `json:"brand"`
	SoV   float64 `json:"sov"`
}

// TopKeyword is one entry of the ranked keyword list.
type TopKeyword struct {
	Keyword      string  `json:"keyword"`
	ShareOfVoice float64 `json:"share_of_voice"`
	Mentions     int     `json:"mentions"`
}

// Insights holds summary statistics computed across all keywords of a run.
type Insights struct {
	AverageSoV         float64        `json:"average_sov"`
	KeywordsAnalyzed   int            `json:"keywords_analyzed"`
	TopKeywords        []TopKeyword   `json:"top_keywords"`
	CompetitorMentions map[string]int `json:"competitor_mentions"`
}

// AnalysisResult is the output of one analysis run.
type AnalysisResult struct {
	OverallSoV        float64           `json:"overall_sov"`
	AverageSentiment  float64           `json:"average_sentiment"`
	KeywordsAnalyzed  int               `json:"keywords_analyzed"`
	TotalMentions     int               `json:"total_mentions"`
	KeywordAnalysis   []KeywordAnalysis `json:"keyword_analysis"`
	CompetitorSoV     []CompetitorShare `json:"competitor_sov"`
	AggregateInsights *Insights         `json:"aggregate_insights,omitempty"`
	Timestamp         string            `json:"timestamp,omitempty"`
}

// Engagement holds raw engagement totals for the results of one keyword.
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Views    int `json:"views"`
}

// Total returns likes, comments and shares combined. Views are reach, not engagement.
func (e Engagement) Total() int {
	return e.Likes + e.Comments + e.Shares
}

// KeywordMetrics is the raw analyzer output for one keyword, before aggregation.
type KeywordMetrics struct {
	Keyword            string             `json:"keyword"`
	ShareOfVoice       float64            `json:"share_of_voice"`
	MarketRank         int                `json:"market_rank,omitempty"`
	Mentions           int                `json:"mentions"`
	Sentiment          *Sentiment         `json:"sentiment,omitempty"`
	Engagement         Engagement         `json:"engagement"`
	CompetitorSoV      map[string]float64 `json:"competitor_sov,omitempty"`
	CompetitorMentions map[string]int     `json:"competitor_mentions"`
	ResultsCount       int                `json:"results_count"`
}
