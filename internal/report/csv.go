package report

import (
	"bytes"
	"encoding/csv"
)

func renderCSV(v view) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{v.Title},
		{"Generated", v.Generated},
		{},
		{"SUMMARY METRICS"},
		{"Metric", "Value", "Unit"},
	}
	for _, s := range v.Summary {
		records = append(records, []string{s.Metric, s.Value, s.Unit})
	}

	records = append(records,
		[]string{},
		[]string{"KEYWORD ANALYSIS"},
		[]string{"Keyword", "Share of Voice (%)", "Rank", "Mentions", "Positive (%)", "Neutral (%)", "Negative (%)"},
	)
	for _, k := range v.Keywords {
		records = append(records, []string{k.Keyword, k.SoV, k.Rank, k.Mentions, k.Positive, k.Neutral, k.Negative})
	}

	records = append(records,
		[]string{},
		[]string{"COMPETITOR COMPARISON"},
		[]string{"Brand", "Share of Voice (%)"},
	)
	for _, c := range v.Competitors {
		records = append(records, []string{c.Brand, c.SoV})
	}

	records = append(records,
		[]string{},
		[]string{"Report generated by " + v.AppName},
	)

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
