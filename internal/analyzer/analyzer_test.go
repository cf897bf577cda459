package analyzer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"sovdash/internal/models"
)

func testMock() *Mock {
	return NewMock(MockConfig{
		Primary: Brand{Name: "atomberg", Keywords: []string{"atomberg"}},
		Competitors: []Brand{
			{Name: "havells"}, {Name: "orient"}, {Name: "ortem"},
			{Name: "agni"}, {Name: "luminous"}, {Name: "carro"},
		},
		Seed: 42,
	})
}

func TestMock_Deterministic(t *testing.T) {
	m := testMock()
	ctx := context.Background()

	a, err := m.Analyze(ctx, "smart fan", Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := testMock().Analyze(ctx, "smart fan", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed and keyword produced different metrics:\n%+v\n%+v", a, b)
	}
}

func TestMock_Metrics(t *testing.T) {
	got, err := testMock().Analyze(context.Background(), "smart ceiling fan", Options{NumResults: 20})
	if err != nil {
		t.Fatal(err)
	}

	if got.Keyword != "smart ceiling fan" {
		t.Errorf("Keyword = %q", got.Keyword)
	}
	if got.ResultsCount < 1 || got.ResultsCount > 20 {
		t.Errorf("ResultsCount = %d, want 1..20", got.ResultsCount)
	}
	if got.Mentions < 1 {
		t.Errorf("Mentions = %d, want at least one brand mention", got.Mentions)
	}
	if got.ShareOfVoice <= 0 || got.ShareOfVoice > 100 {
		t.Errorf("ShareOfVoice = %v, want (0, 100]", got.ShareOfVoice)
	}
	if got.Sentiment == nil || !got.Sentiment.IsBalanced() {
		t.Errorf("Sentiment = %+v, want balanced distribution", got.Sentiment)
	}
	if got.MarketRank < 1 || got.MarketRank > 7 {
		t.Errorf("MarketRank = %d, want 1..7", got.MarketRank)
	}
	if got.Engagement.Total() <= 0 || got.Engagement.Views < got.ResultsCount*100 {
		t.Errorf("Engagement = %+v", got.Engagement)
	}
	if len(got.CompetitorSoV) == 0 {
		t.Error("CompetitorSoV should list mentioned competitors")
	}
	for brand, n := range got.CompetitorMentions {
		if n <= 0 {
			t.Errorf("CompetitorMentions[%s] = %d, want > 0", brand, n)
		}
	}
}

func TestMock_QuickCapsResults(t *testing.T) {
	got, err := testMock().Analyze(context.Background(), "smart fan", Options{NumResults: 20, Type: models.AnalysisQuick})
	if err != nil {
		t.Fatal(err)
	}
	if got.ResultsCount > QuickResultLimit {
		t.Errorf("ResultsCount = %d, want <= %d", got.ResultsCount, QuickResultLimit)
	}
}

func TestMock_OverrideBrands(t *testing.T) {
	got, err := testMock().Analyze(context.Background(), "smart fan", Options{
		Primary:     Brand{Name: "havells"},
		Competitors: []Brand{{Name: "orient"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.CompetitorSoV["atomberg"]; ok {
		t.Error("overridden brand set should not score the default primary brand")
	}
	if got.Mentions < 1 {
		t.Errorf("Mentions = %d, want havells to be mentioned", got.Mentions)
	}
}

func TestMock_CanceledContext(t *testing.T) {
	m := NewMock(MockConfig{Seed: 1, QPS: 0.001})
	ctx, cancel := context.WithCancel(context.Background())

	// Drain the single burst token so the next call has to wait.
	if _, err := m.Analyze(ctx, "first", Options{}); err != nil {
		t.Fatal(err)
	}
	cancel()

	_, err := m.Analyze(ctx, "second", Options{})
	if err == nil {
		t.Fatal("Analyze() with canceled context should fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLexicon_Classify(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"An excellent and reliable fan", LabelPositive},
		{"Terrible noise, broken after a week", LabelNegative},
		{"Ceiling fan installation manual", LabelNeutral},
		{"", LabelNeutral},
		{"good but slow", LabelNeutral},
	}

	var l Lexicon
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := l.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q (polarity %.2f)", tt.text, got, tt.want, l.Polarity(tt.text))
			}
		})
	}
}

func TestBrand_Matches(t *testing.T) {
	b := Brand{Name: "atomberg", Keywords: []string{"Atomberg", "renesa"}}
	if !b.Matches("the renesa fan") {
		t.Error("keyword match failed")
	}
	if b.Matches("havells fan") {
		t.Error("unexpected match")
	}
	if !(Brand{Name: "orient"}).Matches("orient electric") {
		t.Error("name should be the default keyword")
	}
}
