package analyzer

import "strings"

// Sentiment labels
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "awesome", "love", "best",
	"wonderful", "fantastic", "perfect", "nice", "smart", "innovative",
	"efficient", "powerful", "reliable", "quality", "impressive", "outstanding",
	"superior", "elegant", "modern", "advanced", "affordable",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "awful", "hate", "worst", "horrible",
	"disappointing", "useless", "broken", "cheap", "slow", "unreliable",
	"weak", "issue", "problem", "defect", "inferior",
}

// Lexicon is a word-list sentiment classifier used for results without a label.
type Lexicon struct{}

// Polarity returns a score in [-1, 1]. A word counts once per list it hits.
func (Lexicon) Polarity(text string) float64 {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if containsAny(word, positiveWords) {
			pos++
		}
		if containsAny(word, negativeWords) {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// Classify labels text as positive, neutral or negative.
func (l Lexicon) Classify(text string) string {
	p := l.Polarity(text)
	switch {
	case p > 0.1:
		return LabelPositive
	case p < -0.1:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func containsAny(word string, list []string) bool {
	for _, w := range list {
		if strings.Contains(word, w) {
			return true
		}
	}
	return false
}
