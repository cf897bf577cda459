package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"sovdash/internal/logger"
	"sovdash/internal/models"
)

var (
	keywordSearchDesc = prometheus.NewDesc(
		"sov_keyword_searches_total",
		"Total keyword search count by analysis type",
		[]string{"keyword", "analysis_type"},
		nil,
	)

	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sov_analyses_total",
		Help: "Analysis runs by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	reportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sov_reports_generated_total",
		Help: "Reports generated by format",
	}, []string{"format"})
)

// Source is where keyword search counts live.
type Source interface {
	IncrementKeywordSearch(ctx context.Context, keyword, analysisType string) error
	GetAllKeywordSearches(ctx context.Context) ([]models.KeywordSearch, error)
}

// KeywordCollector is a custom Prometheus collector that reads keyword search
// counts from the run store on each scrape.
type KeywordCollector struct {
	source Source
}

// NewKeywordCollector creates a collector over source.
func NewKeywordCollector(source Source) *KeywordCollector {
	return &KeywordCollector{source: source}
}

// Describe sends the metric descriptor to the channel.
func (c *KeywordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordSearchDesc
}

// Collect queries the store for all keyword searches and emits them as counters.
func (c *KeywordCollector) Collect(ch chan<- prometheus.Metric) {
	searches, err := c.source.GetAllKeywordSearches(context.Background())
	if err != nil {
		logger.For("metrics").WithError(err).Error("Failed to collect keyword search metrics")
		return
	}
	for _, s := range searches {
		ch <- prometheus.MustNewConstMetric(
			keywordSearchDesc,
			prometheus.CounterValue,
			float64(s.Count),
			s.Keyword,
			s.AnalysisType,
		)
	}
}

// Recorder provides async keyword search recording.
type Recorder struct {
	source Source
	wg     sync.WaitGroup
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors and initializes the recorder.
// Must be called once at startup.
func Init(source Source) {
	recorderOnce.Do(func() {
		recorder = &Recorder{source: source}
		prometheus.MustRegister(NewKeywordCollector(source), analysesTotal, reportsTotal)
	})
}

// RecordKeywordSearch asynchronously records a keyword search.
func RecordKeywordSearch(keyword string, analysisType models.AnalysisType) {
	if recorder == nil {
		return
	}
	recorder.wg.Add(1)
	go func() {
		defer recorder.wg.Done()
		if err := recorder.source.IncrementKeywordSearch(context.Background(), keyword, string(analysisType)); err != nil {
			logger.For("metrics").WithError(err).WithField("keyword", keyword).Error("Failed to record keyword search")
		}
	}()
}

// Flush waits for pending keyword search writes.
func Flush() {
	if recorder != nil {
		recorder.wg.Wait()
	}
}

// RecordAnalysis counts an analysis run. Outcome is "success" or "error".
func RecordAnalysis(endpoint, outcome string) {
	analysesTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordReport counts a generated report.
func RecordReport(format string) {
	reportsTotal.WithLabelValues(format).Inc()
}
