package db

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sovdash/internal/models"
)

// Memory is an in-process stand-in for DB used when no DATABASE_URL is set.
// Runs are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	runs     []models.AnalysisRun // oldest first
	searches map[[2]string]*models.KeywordSearch
	now      func() time.Time
}

// NewMemory creates an empty in-memory run store.
func NewMemory() *Memory {
	return &Memory{searches: make(map[[2]string]*models.KeywordSearch), now: time.Now}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// SaveRun stores a deep copy of run and sets its ID and CreatedAt.
func (m *Memory) SaveRun(_ context.Context, run *models.AnalysisRun) error {
	stored, err := cloneRun(*run)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored.ID = uuid.New()
	stored.CreatedAt = m.now()
	m.runs = append(m.runs, stored)

	run.ID, run.CreatedAt = stored.ID, stored.CreatedAt
	return nil
}

// LatestRun returns the most recently saved run.
func (m *Memory) LatestRun(_ context.Context) (*models.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.runs) == 0 {
		return nil, ErrRunNotFound
	}
	run, err := cloneRun(m.runs[len(m.runs)-1])
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (m *Memory) ListRuns(_ context.Context, limit int) ([]models.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]models.AnalysisRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		run, err := cloneRun(m.runs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

// PruneRuns drops all but the keep most recent runs.
func (m *Memory) PruneRuns(_ context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.runs) - keep
	if n <= 0 {
		return 0, nil
	}
	m.runs = append([]models.AnalysisRun(nil), m.runs[n:]...)
	return int64(n), nil
}

// IncrementKeywordSearch bumps the count for keyword and analysisType.
func (m *Memory) IncrementKeywordSearch(_ context.Context, keyword, analysisType string) error {
	keyword, analysisType, ok := searchKey(keyword, analysisType)
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{keyword, analysisType}
	s, ok := m.searches[key]
	if !ok {
		s = &models.KeywordSearch{Keyword: keyword, AnalysisType: analysisType}
		m.searches[key] = s
	}
	s.Count++
	s.LastSeenAt = m.now()
	return nil
}

// GetAllKeywordSearches returns all counters sorted by keyword and type.
func (m *Memory) GetAllKeywordSearches(_ context.Context) ([]models.KeywordSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.KeywordSearch, 0, len(m.searches))
	for _, s := range m.searches {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := strings.Compare(out[i].Keyword, out[j].Keyword); c != 0 {
			return c < 0
		}
		return out[i].AnalysisType < out[j].AnalysisType
	})
	return out, nil
}

// cloneRun copies a run through JSON so callers never share nested slices.
func cloneRun(run models.AnalysisRun) (models.AnalysisRun, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return models.AnalysisRun{}, err
	}
	var out models.AnalysisRun
	err = json.Unmarshal(data, &out)
	return out, err
}
