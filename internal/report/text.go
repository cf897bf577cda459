package report

import (
	"fmt"
	"strings"
)

const textWidth = 80

func renderText(v view) []byte {
	var b strings.Builder
	rule := strings.Repeat("=", textWidth)
	thin := strings.Repeat("-", 40)

	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, strings.ToUpper(v.Title), rule)
	fmt.Fprintf(&b, "Generated: %s\n\n", v.Generated)

	fmt.Fprintf(&b, "SUMMARY METRICS\n%s\n", thin)
	for _, s := range v.Summary {
		fmt.Fprintf(&b, "%-30s %10s %s\n", s.Metric+":", s.Value, s.Unit)
	}

	fmt.Fprintf(&b, "\n%s\n\nKEYWORD ANALYSIS\n%s\n", rule, thin)
	fmt.Fprintf(&b, "%-32s %8s %6s %9s %9s %9s %9s\n", "Keyword", "SoV %", "Rank", "Mentions", "Pos %", "Neu %", "Neg %")
	for _, k := range v.Keywords {
		fmt.Fprintf(&b, "%-32s %8s %6s %9s %9s %9s %9s\n", k.Keyword, k.SoV, k.Rank, k.Mentions, k.Positive, k.Neutral, k.Negative)
	}
	if len(v.Keywords) == 0 {
		b.WriteString("(no keywords analyzed)\n")
	}

	fmt.Fprintf(&b, "\n%s\n\nCOMPETITOR COMPARISON\n%s\n", rule, thin)
	for _, c := range v.Competitors {
		fmt.Fprintf(&b, "%-32s %8s%%\n", c.Brand, c.SoV)
	}
	if len(v.Competitors) == 0 {
		b.WriteString("(no competitor data)\n")
	}

	fmt.Fprintf(&b, "\n%s\nReport generated by %s\n%s\n", rule, v.AppName, rule)
	return []byte(b.String())
}
