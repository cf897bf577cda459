// Package dashboard renders analysis results onto a display target and drives
// searches, exports and history recall against the dashboard API.
package dashboard

import (
	"fmt"
	"strconv"

	"sovdash/internal/aggregator"
	"sovdash/internal/models"
)

// Placeholders for missing values, matching the report renderers.
const (
	placeholderMissing = "-"
	placeholderLabel   = "N/A"
)

// MetricCards are the summary cards at the top of the dashboard.
type MetricCards struct {
	OverallSoV       string
	AverageSentiment string
	KeywordsAnalyzed string
	TotalMentions    string
}

// TableRow is one keyword row of the analysis table.
type TableRow struct {
	Keyword  string
	SoV      string
	Rank     string
	Mentions string
	Positive string
	Neutral  string
	Negative string
}

// ChartName identifies one of the dashboard charts.
type ChartName string

// Dashboard charts
const (
	ChartSoV         ChartName = "sov_distribution"
	ChartSentiment   ChartName = "sentiment_breakdown"
	ChartCompetitors ChartName = "competitor_ranking"
)

// Charts lists the charts in display order.
func Charts() []ChartName {
	return []ChartName{ChartSoV, ChartSentiment, ChartCompetitors}
}

// Series is the label and data arrays behind one chart.
type Series struct {
	Labels []string
	Values []float64
}

// State is everything the dashboard shows for one result.
type State struct {
	Metrics MetricCards
	Rows    []TableRow
	Charts  map[ChartName]Series
}

// BuildState formats result for display. A nil result yields the empty
// dashboard with fallback card values and no rows.
func BuildState(result *models.AnalysisResult) State {
	if result == nil {
		result = &models.AnalysisResult{}
	}

	st := State{
		Metrics: MetricCards{
			OverallSoV:       percent(result.OverallSoV),
			AverageSentiment: percent(result.AverageSentiment),
			KeywordsAnalyzed: strconv.Itoa(result.KeywordsAnalyzed),
			TotalMentions:    strconv.Itoa(result.TotalMentions),
		},
		Rows:   make([]TableRow, 0, len(result.KeywordAnalysis)),
		Charts: make(map[ChartName]Series, 3),
	}

	sov := Series{Labels: []string{}, Values: []float64{}}
	var sentimentTotals models.Sentiment
	withSentiment := 0

	for _, ka := range result.KeywordAnalysis {
		row := TableRow{
			Keyword:  ka.Keyword,
			SoV:      decimal(ka.ShareOfVoice),
			Rank:     placeholderMissing,
			Mentions: strconv.Itoa(ka.Mentions),
			Positive: placeholderMissing,
			Neutral:  placeholderMissing,
			Negative: placeholderMissing,
		}
		if row.Keyword == "" {
			row.Keyword = placeholderLabel
		}
		if ka.Rank > 0 {
			row.Rank = strconv.Itoa(ka.Rank)
		}
		if s := ka.Sentiment; s != nil {
			row.Positive = decimal(s.Positive)
			row.Neutral = decimal(s.Neutral)
			row.Negative = decimal(s.Negative)
			sentimentTotals.Positive += s.Positive
			sentimentTotals.Neutral += s.Neutral
			sentimentTotals.Negative += s.Negative
			withSentiment++
		}
		st.Rows = append(st.Rows, row)

		sov.Labels = append(sov.Labels, row.Keyword)
		sov.Values = append(sov.Values, ka.ShareOfVoice)
	}
	st.Charts[ChartSoV] = sov

	sentiment := Series{Labels: []string{"Positive", "Neutral", "Negative"}, Values: []float64{0, 0, 0}}
	if withSentiment > 0 {
		n := float64(withSentiment)
		sentiment.Values = []float64{
			aggregator.Round(sentimentTotals.Positive / n),
			aggregator.Round(sentimentTotals.Neutral / n),
			aggregator.Round(sentimentTotals.Negative / n),
		}
	}
	st.Charts[ChartSentiment] = sentiment

	competitors := Series{Labels: []string{}, Values: []float64{}}
	for _, cs := range result.CompetitorSoV {
		label := cs.Brand
		if label == "" {
			label = placeholderLabel
		}
		competitors.Labels = append(competitors.Labels, label)
		competitors.Values = append(competitors.Values, cs.SoV)
	}
	st.Charts[ChartCompetitors] = competitors

	return st
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
