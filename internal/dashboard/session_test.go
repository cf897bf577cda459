package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"sovdash/internal/history"
	"sovdash/internal/logger"
	"sovdash/internal/models"
	"sovdash/internal/report"
	"sovdash/internal/storage"
	"sovdash/internal/validation"
)

func twoKeywordResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		OverallSoV:       47.5,
		AverageSentiment: 61,
		KeywordsAnalyzed: 2,
		TotalMentions:    19,
		KeywordAnalysis: []models.KeywordAnalysis{
			{Keyword: "wifi fan", ShareOfVoice: 55, Rank: 1, Mentions: 11, Sentiment: &models.Sentiment{Positive: 62, Neutral: 28, Negative: 10}},
			{Keyword: "smart fan", ShareOfVoice: 40, Rank: 2, Mentions: 8, Sentiment: &models.Sentiment{Positive: 60, Neutral: 30, Negative: 10}},
		},
		CompetitorSoV: []models.CompetitorShare{{Brand: "havells", SoV: 30}, {Brand: "orient", SoV: 22.5}},
	}
}

type fakeAPI struct {
	searches atomic.Int32
	delay    time.Duration
	block    chan struct{}
	received chan struct{}
	result   *models.AnalysisResult
	lastReq  models.UserSearchRequest
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user-search", func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&f.lastReq); err != nil {
			t.Errorf("decode user search: %v", err)
		}
		if f.received != nil {
			f.received <- struct{}{}
		}
		if f.block != nil {
			<-f.block
		}
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}
		_ = json.NewEncoder(w).Encode(models.UserSearchResponse{
			Success: true,
			Data:    f.result,
			Message: "Analysis complete for 2 keyword(s)",
		})
	})
	mux.HandleFunc("GET /api/demo", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(&models.AnalysisResult{
			OverallSoV:       53.5,
			KeywordsAnalyzed: 3,
			KeywordAnalysis: []models.KeywordAnalysis{
				{Keyword: "smart fan"}, {Keyword: "WiFi fan"}, {Keyword: "ceiling fan"},
			},
		})
	})
	mux.HandleFunc("POST /api/generate-report", func(w http.ResponseWriter, r *http.Request) {
		var req models.GenerateReportRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Format == "pdf" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"error","error":"Unsupported format"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.GenerateReportResponse{
			Format:   req.Format,
			Filename: "atomberg_sov_analysis_20261014_153045." + req.Format,
			Content:  "ok",
		})
	})
	return mux
}

func newTestSession(t *testing.T, api *fakeAPI, analysisTimeout time.Duration) (*Session, *MemoryTarget, *history.Store) {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	gen, err := report.New(report.Options{})
	if err != nil {
		t.Fatal(err)
	}
	hist := history.Open(storage.NewMemory(), logger.Discard())
	target := NewMemoryTarget()
	client := NewClient(srv.URL, time.Second, analysisTimeout)
	return NewSession(client, target, hist, gen, logger.Discard()), target, hist
}

func TestPerformSearch_TwoKeywords(t *testing.T) {
	api := &fakeAPI{result: twoKeywordResult()}
	s, target, hist := newTestSession(t, api, time.Second)

	result, err := s.PerformSearch(context.Background(), SearchInput{
		KeywordsText: "smart fan, wifi fan",
		NumResults:   10,
		AnalysisType: models.AnalysisFull,
	})
	if err != nil {
		t.Fatalf("PerformSearch() error = %v", err)
	}
	if result.KeywordsAnalyzed != 2 {
		t.Errorf("result = %+v", result)
	}

	if !reflect.DeepEqual(api.lastReq.Keywords, []string{"smart fan", "wifi fan"}) || api.lastReq.NumResults != 10 || api.lastReq.AnalysisType != "full" {
		t.Errorf("request = %+v", api.lastReq)
	}

	v := target.Snapshot()
	if v.Metrics.OverallSoV != "47.5%" || v.Metrics.KeywordsAnalyzed != "2" {
		t.Errorf("metrics = %+v", v.Metrics)
	}
	if len(v.Rows) != 2 || v.Rows[0].Keyword != "wifi fan" || v.Rows[1].Keyword != "smart fan" {
		t.Errorf("rows = %+v", v.Rows)
	}
	if !v.Controls[ControlExport] || !v.Controls[ControlSearch] {
		t.Errorf("controls = %+v", v.Controls)
	}
	if v.Status.Kind != StatusSuccess {
		t.Errorf("status = %+v", v.Status)
	}

	if hist.Len() != 1 || hist.Entries()[0].ResultsCount != 2 {
		t.Errorf("history = %+v", hist.Entries())
	}
	if len(v.History) != 1 {
		t.Errorf("rendered history = %d entries", len(v.History))
	}
}

func TestPerformSearch_NumResults(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"unset uses the user search default", 0, validation.DefaultUserSearchResults},
		{"explicit", 7, 7},
		{"clamped", 500, validation.MaxNumResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{result: twoKeywordResult()}
			s, _, _ := newTestSession(t, api, time.Second)

			if _, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "smart fan", NumResults: tt.in}); err != nil {
				t.Fatal(err)
			}
			if api.lastReq.NumResults != tt.want {
				t.Errorf("num_results = %d, want %d", api.lastReq.NumResults, tt.want)
			}
		})
	}
}

func TestPerformSearch_EmptyInputMakesNoRequest(t *testing.T) {
	tests := []string{"", "   ", " , ,"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			api := &fakeAPI{result: twoKeywordResult()}
			s, target, _ := newTestSession(t, api, time.Second)

			if _, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: input}); !errors.Is(err, ErrNoKeywords) {
				t.Errorf("error = %v, want ErrNoKeywords", err)
			}
			if n := api.searches.Load(); n != 0 {
				t.Errorf("server received %d requests", n)
			}
			if v := target.Snapshot(); v.Status.Kind != StatusError || v.Status.Message == "" {
				t.Errorf("status = %+v", v.Status)
			}
		})
	}
}

func TestPerformSearch_Timeout(t *testing.T) {
	api := &fakeAPI{result: twoKeywordResult(), delay: time.Second}
	s, target, hist := newTestSession(t, api, 50*time.Millisecond)

	_, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "smart fan"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}

	v := target.Snapshot()
	if v.Status.Kind != StatusTimeout || v.Status.Message != msgTimeout {
		t.Errorf("status = %+v", v.Status)
	}
	if !v.Controls[ControlSearch] {
		t.Error("search control should be enabled after a timeout")
	}
	if v.Controls[ControlExport] {
		t.Error("export should stay disabled without data")
	}
	if hist.Len() != 0 {
		t.Error("failed search should not be recorded")
	}
}

func TestPerformSearch_ServerError(t *testing.T) {
	api := &fakeAPI{result: twoKeywordResult()}
	s, target, _ := newTestSession(t, api, time.Second)
	s.Update(twoKeywordResult())
	before := target.Snapshot()

	// A success response with no data is treated as a failure.
	api.result = nil
	if _, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "x"}); err == nil {
		t.Fatal("expected an error")
	}

	after := target.Snapshot()
	if after.Status.Kind != StatusError {
		t.Errorf("status = %+v", after.Status)
	}
	if !reflect.DeepEqual(after.Rows, before.Rows) || after.Metrics != before.Metrics {
		t.Error("failed search changed the displayed result")
	}
}

func TestPerformSearch_SupersededResponseDropped(t *testing.T) {
	api := &fakeAPI{
		result:   twoKeywordResult(),
		block:    make(chan struct{}),
		received: make(chan struct{}, 1),
	}
	s, target, _ := newTestSession(t, api, 5*time.Second)

	errc := make(chan error, 1)
	go func() {
		_, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "smart fan, wifi fan"})
		errc <- err
	}()
	<-api.received

	if _, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "other"}); !errors.Is(err, ErrBusy) {
		t.Errorf("second search error = %v, want ErrBusy", err)
	}

	if _, err := s.LoadDemo(context.Background()); err != nil {
		t.Fatalf("LoadDemo() error = %v", err)
	}
	close(api.block)

	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("search error = %v, want ErrSuperseded", err)
	}
	if v := target.Snapshot(); len(v.Rows) != 3 || v.Metrics.OverallSoV != "53.5%" {
		t.Errorf("demo data was overwritten: %+v", v.Metrics)
	}
}

func TestUpdate_IdempotentAndReplaces(t *testing.T) {
	s, target, _ := newTestSession(t, &fakeAPI{}, time.Second)
	result := twoKeywordResult()

	s.Update(result)
	first := target.Snapshot()
	s.Update(result)
	second := target.Snapshot()

	first.ChartUpdates, second.ChartUpdates = 0, 0
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second Update changed the view:\n%+v\n%+v", first, second)
	}

	s.Update(&models.AnalysisResult{
		KeywordsAnalyzed: 1,
		KeywordAnalysis:  []models.KeywordAnalysis{{Keyword: "bldc fan"}},
	})
	v := target.Snapshot()
	if len(v.Rows) != 1 || v.Rows[0].Keyword != "bldc fan" {
		t.Errorf("rows after replace = %+v", v.Rows)
	}
	if got := v.Charts[ChartSoV].Labels; !reflect.DeepEqual(got, []string{"bldc fan"}) {
		t.Errorf("sov chart labels = %v", got)
	}
	if got := v.Charts[ChartCompetitors].Labels; len(got) != 0 {
		t.Errorf("stale competitor labels = %v", got)
	}
	if v.Rows[0].Rank != "-" || v.Rows[0].Positive != "-" {
		t.Errorf("placeholders = %+v", v.Rows[0])
	}
}

func TestExport(t *testing.T) {
	s, target, _ := newTestSession(t, &fakeAPI{}, time.Second)

	if _, err := s.Export(report.FormatJSON); !errors.Is(err, ErrNoData) {
		t.Errorf("Export() without data error = %v, want ErrNoData", err)
	}
	if v := target.Snapshot(); v.Status.Message != msgNoData {
		t.Errorf("status = %+v", v.Status)
	}

	result := twoKeywordResult()
	s.Update(result)
	rep, err := s.Export(report.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var doc report.Document
	if err := json.Unmarshal(rep.Content, &doc); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(doc.AnalysisData, *result) {
		t.Errorf("round trip mismatch: %+v", doc.AnalysisData)
	}
}

func TestDownloadReport(t *testing.T) {
	s, _, _ := newTestSession(t, &fakeAPI{}, time.Second)

	if _, err := s.DownloadReport(context.Background(), report.FormatCSV); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}

	s.Update(twoKeywordResult())
	resp, err := s.DownloadReport(context.Background(), report.FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Filename != "atomberg_sov_analysis_20261014_153045.csv" {
		t.Errorf("filename = %q", resp.Filename)
	}

	_, err = s.DownloadReport(context.Background(), report.Format("pdf"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Unsupported format" {
		t.Errorf("error = %v", err)
	}
}

func TestRestoreAndClearHistory(t *testing.T) {
	api := &fakeAPI{result: twoKeywordResult()}
	s, target, hist := newTestSession(t, api, time.Second)

	if _, err := s.PerformSearch(context.Background(), SearchInput{KeywordsText: "smart fan, wifi fan", AnalysisType: models.AnalysisQuick}); err != nil {
		t.Fatal(err)
	}
	searches := api.searches.Load()

	form, err := s.Restore(0)
	if err != nil {
		t.Fatal(err)
	}
	if form.KeywordsText != "smart fan, wifi fan" || form.AnalysisType != models.AnalysisQuick {
		t.Errorf("form = %+v", form)
	}
	if v := target.Snapshot(); v.Form.KeywordsText != form.KeywordsText {
		t.Errorf("form not filled: %+v", v.Form)
	}
	if api.searches.Load() != searches || hist.Len() != 1 {
		t.Error("Restore should not search or change history")
	}

	if _, err := s.Restore(5); !errors.Is(err, history.ErrIndexOutOfRange) {
		t.Errorf("Restore(5) error = %v", err)
	}

	if err := s.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	if hist.Len() != 0 || len(target.Snapshot().History) != 0 {
		t.Error("history not cleared")
	}
}
