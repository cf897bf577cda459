package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sovdash/internal/history"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/validation"
)

// Status messages shown to the user.
const (
	msgNoKeywords = "Please enter at least one keyword"
	msgTimeout    = "Analysis timed out. Try fewer keywords or a smaller result count."
	msgNoData     = "No analysis data available. Run a search or load the demo first."
)

// SearchInput is the search form.
type SearchInput struct {
	KeywordsText string // comma-separated
	NumResults   int
	AnalysisType models.AnalysisType
}

// Session is one user's dashboard: the current result, chart state, search
// history and which controls are busy. It is safe for concurrent use.
type Session struct {
	client  *Client
	target  Target
	history *history.Store
	reports *report.Generator
	log     *logrus.Entry

	mu      sync.Mutex
	current *models.AnalysisResult
	charts  map[ChartName]*Series
	busy    map[Control]bool
	latest  uuid.UUID
}

// NewSession creates a Session drawing on target. hist may be nil to disable
// search history.
func NewSession(client *Client, target Target, hist *history.Store, reports *report.Generator, log *logrus.Entry) *Session {
	s := &Session{
		client:  client,
		target:  target,
		history: hist,
		reports: reports,
		log:     log,
		charts:  make(map[ChartName]*Series, len(Charts())),
		busy:    make(map[Control]bool),
	}
	for _, name := range Charts() {
		s.charts[name] = &Series{Labels: []string{}, Values: []float64{}}
	}

	target.SetControl(ControlSearch, true)
	target.SetControl(ControlDemo, true)
	target.SetControl(ControlExport, false)
	target.SetControl(ControlReport, false)
	s.renderLocked(nil)
	s.renderHistory()
	return s
}

// Current returns the result currently displayed, or nil.
func (s *Session) Current() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update replaces everything displayed with result. Calling it twice with the
// same result leaves the same visible state.
func (s *Session) Update(result *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = result
	s.renderLocked(result)
	s.target.SetControl(ControlExport, result != nil)
	s.target.SetControl(ControlReport, result != nil)
}

func (s *Session) renderLocked(result *models.AnalysisResult) {
	st := BuildState(result)
	s.target.RenderMetrics(st.Metrics)
	s.target.RenderTable(st.Rows)
	for _, name := range Charts() {
		ch := s.charts[name]
		next := st.Charts[name]
		ch.Labels = append(ch.Labels[:0], next.Labels...)
		ch.Values = append(ch.Values[:0], next.Values...)
		s.target.UpdateChart(name, *ch)
	}
}

// acquire marks control busy. It returns false if a request for control is
// already in flight.
func (s *Session) acquire(control Control) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[control] {
		return false
	}
	s.busy[control] = true
	s.target.SetControl(control, false)
	return true
}

func (s *Session) release(control Control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[control] = false
	enabled := true
	if control == ControlReport {
		enabled = s.current != nil
	}
	s.target.SetControl(control, enabled)
}

func (s *Session) newRequest() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.latest = id
	s.mu.Unlock()
	return id
}

// applyIfLatest renders result unless a newer request has started since id.
func (s *Session) applyIfLatest(id uuid.UUID, result *models.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != id {
		return false
	}
	s.current = result
	s.renderLocked(result)
	s.target.SetControl(ControlExport, true)
	s.target.SetControl(ControlReport, !s.busy[ControlReport])
	return true
}

func (s *Session) status(kind StatusKind, msg string) {
	s.target.ShowStatus(Status{Kind: kind, Message: msg})
}

// failure shows err and returns it. The displayed result is left as it was.
func (s *Session) failure(prefix string, err error) error {
	switch {
	case errors.Is(err, ErrTimeout):
		s.status(StatusTimeout, msgTimeout)
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			s.status(StatusError, prefix+": "+apiErr.Message)
		} else {
			s.status(StatusError, prefix+": "+err.Error())
		}
	}
	return err
}

// PerformSearch runs a user search and renders the result. Empty keyword input
// fails with ErrNoKeywords before any request is made.
func (s *Session) PerformSearch(ctx context.Context, in SearchInput) (*models.AnalysisResult, error) {
	keywords := validation.SplitKeywords(in.KeywordsText)
	if len(keywords) == 0 {
		s.status(StatusError, msgNoKeywords)
		return nil, ErrNoKeywords
	}
	typ := in.AnalysisType
	if typ == "" {
		typ = models.AnalysisFull
	}

	if !s.acquire(ControlSearch) {
		return nil, ErrBusy
	}
	defer s.release(ControlSearch)

	id := s.newRequest()
	s.status(StatusInfo, fmt.Sprintf("Analyzing %d keyword(s)...", len(keywords)))

	resp, err := s.client.UserSearch(ctx, models.UserSearchRequest{
		Keywords:     keywords,
		NumResults:   validation.ClampNumResults(in.NumResults, validation.DefaultUserSearchResults),
		AnalysisType: string(typ),
	})
	if err != nil {
		s.log.WithError(err).Warn("Search failed")
		return nil, s.failure("Search failed", err)
	}

	if !s.applyIfLatest(id, resp.Data) {
		s.log.WithField("request_id", id).Debug("Dropping superseded search response")
		return nil, ErrSuperseded
	}

	if s.history != nil {
		if _, err := s.history.Record(keywords, typ, len(resp.Data.KeywordAnalysis)); err != nil {
			s.log.WithError(err).Warn("Failed to save search history")
		}
		s.renderHistory()
	}

	msg := resp.Message
	if msg == "" {
		msg = fmt.Sprintf("Analysis complete for %d keyword(s)", len(keywords))
	}
	s.status(StatusSuccess, msg)
	return resp.Data, nil
}

// LoadDemo fetches and renders the sample analysis.
func (s *Session) LoadDemo(ctx context.Context) (*models.AnalysisResult, error) {
	if !s.acquire(ControlDemo) {
		return nil, ErrBusy
	}
	defer s.release(ControlDemo)

	id := s.newRequest()
	result, err := s.client.Demo(ctx)
	if err != nil {
		return nil, s.failure("Failed to load demo data", err)
	}
	if !s.applyIfLatest(id, result) {
		return nil, ErrSuperseded
	}
	s.status(StatusSuccess, "Demo data loaded")
	return result, nil
}

// Export renders the current result locally.
func (s *Session) Export(format report.Format) (*report.Report, error) {
	current := s.Current()
	if current == nil {
		s.status(StatusError, msgNoData)
		return nil, ErrNoData
	}
	rep, err := s.reports.Generate(current, format)
	if err != nil {
		s.status(StatusError, "Export failed: "+err.Error())
		return nil, err
	}
	s.status(StatusSuccess, "Exported "+rep.Filename)
	return rep, nil
}

// DownloadReport asks the server to render the current result.
func (s *Session) DownloadReport(ctx context.Context, format report.Format) (*models.GenerateReportResponse, error) {
	current := s.Current()
	if current == nil {
		s.status(StatusError, msgNoData)
		return nil, ErrNoData
	}

	if !s.acquire(ControlReport) {
		return nil, ErrBusy
	}
	defer s.release(ControlReport)

	resp, err := s.client.GenerateReport(ctx, current, format)
	if err != nil {
		return nil, s.failure("Report generation failed", err)
	}
	s.status(StatusSuccess, "Report ready: "+resp.Filename)
	return resp, nil
}

// History returns the recorded searches, newest first.
func (s *Session) History() []models.SearchHistoryEntry {
	if s.history == nil {
		return nil
	}
	return s.history.Entries()
}

// Restore puts the search at index back into the form without running it.
func (s *Session) Restore(index int) (history.FormState, error) {
	if s.history == nil {
		return history.FormState{}, fmt.Errorf("%w: %d", history.ErrIndexOutOfRange, index)
	}
	form, err := s.history.Restore(index)
	if err != nil {
		s.status(StatusError, "No search at that position")
		return history.FormState{}, err
	}
	s.target.FillForm(form)
	s.status(StatusInfo, "Search restored: "+form.KeywordsText)
	return form, nil
}

// ClearHistory removes all recorded searches.
func (s *Session) ClearHistory() error {
	if s.history == nil {
		return nil
	}
	if err := s.history.Clear(); err != nil {
		s.status(StatusError, "Failed to clear history: "+err.Error())
		return err
	}
	s.renderHistory()
	s.status(StatusInfo, "Search history cleared")
	return nil
}

func (s *Session) renderHistory() {
	s.target.RenderHistory(s.History())
}
