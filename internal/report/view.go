package report

import (
	"strconv"
	"time"

	"sovdash/internal/models"
)

// Placeholders for values the result does not carry.
const (
	placeholderMissing = "-"
	placeholderLabel   = "N/A"
)

type summaryRow struct {
	Metric string
	Value  string
	Unit   string
}

type keywordRow struct {
	Keyword  string
	SoV      string
	Rank     string
	Mentions string
	Positive string
	Neutral  string
	Negative string
}

type competitorRow struct {
	Brand string
	SoV   string
}

// view is the formatted content shared by the CSV, TXT and HTML renderers.
type view struct {
	Title       string
	AppName     string
	Generated   string
	Summary     []summaryRow
	Keywords    []keywordRow
	Competitors []competitorRow
}

func buildView(r *models.AnalysisResult, appName string, now time.Time) view {
	v := view{
		Title:     "Atomberg Share of Voice Analysis Report",
		AppName:   appName,
		Generated: now.Format("2006-01-02 15:04:05"),
		Summary: []summaryRow{
			{"Overall Share of Voice", decimal(r.OverallSoV), "%"},
			{"Average Positive Sentiment", decimal(r.AverageSentiment), "%"},
			{"Keywords Analyzed", strconv.Itoa(r.KeywordsAnalyzed), "keywords"},
			{"Total Mentions", strconv.Itoa(r.TotalMentions), "mentions"},
		},
		Keywords:    make([]keywordRow, 0, len(r.KeywordAnalysis)),
		Competitors: make([]competitorRow, 0, len(r.CompetitorSoV)),
	}

	for _, ka := range r.KeywordAnalysis {
		row := keywordRow{
			Keyword:  label(ka.Keyword),
			SoV:      decimal(ka.ShareOfVoice),
			Rank:     placeholderMissing,
			Mentions: strconv.Itoa(ka.Mentions),
			Positive: placeholderMissing,
			Neutral:  placeholderMissing,
			Negative: placeholderMissing,
		}
		if ka.Rank > 0 {
			row.Rank = strconv.Itoa(ka.Rank)
		}
		if s := ka.Sentiment; s != nil {
			row.Positive = decimal(s.Positive)
			row.Neutral = decimal(s.Neutral)
			row.Negative = decimal(s.Negative)
		}
		v.Keywords = append(v.Keywords, row)
	}

	for _, c := range r.CompetitorSoV {
		v.Competitors = append(v.Competitors, competitorRow{Brand: label(c.Brand), SoV: decimal(c.SoV)})
	}
	return v
}

func decimal(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func label(s string) string {
	if s == "" {
		return placeholderLabel
	}
	return s
}
