package dashboard

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"sovdash/internal/history"
	"sovdash/internal/models"
)

// StatusKind classifies a status message.
type StatusKind string

// Status kinds
const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusTimeout StatusKind = "timeout"
)

// Status is the message line under the search form.
type Status struct {
	Kind    StatusKind
	Message string
}

// Control is a user-triggered control that can be disabled while its request runs.
type Control string

// Dashboard controls
const (
	ControlSearch Control = "search"
	ControlDemo   Control = "demo"
	ControlExport Control = "export"
	ControlReport Control = "report"
)

// Target is where the dashboard is drawn. Implementations must not retain the
// slices they are given.
type Target interface {
	RenderMetrics(cards MetricCards)
	RenderTable(rows []TableRow)
	UpdateChart(name ChartName, series Series)
	ShowStatus(status Status)
	SetControl(control Control, enabled bool)
	FillForm(form history.FormState)
	RenderHistory(entries []models.SearchHistoryEntry)
}

// View is a point-in-time copy of what a MemoryTarget displays.
type View struct {
	Metrics      MetricCards
	Rows         []TableRow
	Charts       map[ChartName]Series
	ChartUpdates int
	Status       Status
	Controls     map[Control]bool
	Form         history.FormState
	History      []models.SearchHistoryEntry
}

// MemoryTarget keeps the rendered state in memory. It backs the terminal
// client and tests.
type MemoryTarget struct {
	mu   sync.Mutex
	view View
}

// NewMemoryTarget creates an empty MemoryTarget.
func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{view: View{
		Charts:   make(map[ChartName]Series),
		Controls: make(map[Control]bool),
	}}
}

func (t *MemoryTarget) RenderMetrics(cards MetricCards) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Metrics = cards
}

func (t *MemoryTarget) RenderTable(rows []TableRow) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Rows = append([]TableRow(nil), rows...)
}

func (t *MemoryTarget) UpdateChart(name ChartName, series Series) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Charts[name] = Series{
		Labels: append([]string(nil), series.Labels...),
		Values: append([]float64(nil), series.Values...),
	}
	t.view.ChartUpdates++
}

func (t *MemoryTarget) ShowStatus(status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Status = status
}

func (t *MemoryTarget) SetControl(control Control, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Controls[control] = enabled
}

func (t *MemoryTarget) FillForm(form history.FormState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	form.Keywords = append([]string(nil), form.Keywords...)
	t.view.Form = form
}

func (t *MemoryTarget) RenderHistory(entries []models.SearchHistoryEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.History = append([]models.SearchHistoryEntry(nil), entries...)
}

// Snapshot returns a copy of the current view.
func (t *MemoryTarget) Snapshot() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.view
	v.Rows = append([]TableRow(nil), t.view.Rows...)
	v.History = append([]models.SearchHistoryEntry(nil), t.view.History...)
	v.Charts = make(map[ChartName]Series, len(t.view.Charts))
	for name, s := range t.view.Charts {
		v.Charts[name] = s
	}
	v.Controls = make(map[Control]bool, len(t.view.Controls))
	for c, enabled := range t.view.Controls {
		v.Controls[c] = enabled
	}
	return v
}

// WriteTo prints the dashboard as plain text.
func (t *MemoryTarget) WriteTo(w io.Writer) (int64, error) {
	v := t.Snapshot()
	var b strings.Builder

	fmt.Fprintf(&b, "Overall SoV: %s   Avg Sentiment: %s   Keywords: %s   Mentions: %s\n\n",
		v.Metrics.OverallSoV, v.Metrics.AverageSentiment, v.Metrics.KeywordsAnalyzed, v.Metrics.TotalMentions)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tSOV %\tRANK\tMENTIONS\tPOS %\tNEU %\tNEG %")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.Keyword, r.SoV, r.Rank, r.Mentions, r.Positive, r.Neutral, r.Negative)
	}
	_ = tw.Flush()

	if comp := v.Charts[ChartCompetitors]; len(comp.Labels) > 0 {
		b.WriteString("\nCompetitors:\n")
		for i, label := range comp.Labels {
			fmt.Fprintf(&b, "  %-12s %6.2f%%\n", label, comp.Values[i])
		}
	}
	if v.Status.Message != "" {
		fmt.Fprintf(&b, "\n[%s] %s\n", v.Status.Kind, v.Status.Message)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
