// Package history keeps the most recent user searches in persistent storage.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sovdash/internal/models"
	"sovdash/internal/storage"
)

// MaxEntries is the number of searches kept. Older entries are evicted first.
const MaxEntries = 10

// StorageKey is the key the history is persisted under.
const StorageKey = "sov_search_history"

// ErrIndexOutOfRange is returned when an entry index does not exist.
var ErrIndexOutOfRange = errors.New("history index out of range")

// FormState is what a restored entry puts back into the search form.
type FormState struct {
	Keywords     []string
	KeywordsText string // comma-joined, as typed into the form
	AnalysisType models.AnalysisType
}

// Store is a bounded, newest-first search history. Every mutation is
// persisted before it returns.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	log     *logrus.Entry
	entries []models.SearchHistoryEntry
	now     func() time.Time
}

// Open loads the history from s. Corrupt or unreadable data is logged and
// replaced by an empty history.
func Open(s storage.Storage, log *logrus.Entry) *Store {
	st := &Store{storage: s, log: log, now: time.Now}
	st.entries = st.load()
	return st
}

func (s *Store) load() []models.SearchHistoryEntry {
	raw, err := s.storage.Get(StorageKey)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read search history, starting empty")
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	var entries []models.SearchHistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.WithError(err).Warn("Search history is corrupt, resetting")
		if err := s.storage.Delete(StorageKey); err != nil {
			s.log.WithError(err).Warn("Failed to remove corrupt search history")
		}
		return nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

func (s *Store) persist(entries []models.SearchHistoryEntry) error {
	if entries == nil {
		entries = []models.SearchHistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.storage.Set(StorageKey, data, 0); err != nil {
		return fmt.Errorf("persist search history: %w", err)
	}
	return nil
}

// Record prepends a search and evicts the oldest entries beyond MaxEntries.
// The in-memory history only changes if persisting succeeds.
func (s *Store) Record(keywords []string, analysisType models.AnalysisType, resultsCount int) (models.SearchHistoryEntry, error) {
	entry := models.SearchHistoryEntry{
		Timestamp:    s.now().UTC().Format(time.RFC3339),
		Keywords:     append([]string(nil), keywords...),
		AnalysisType: analysisType,
		ResultsCount: resultsCount,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.SearchHistoryEntry, 0, MaxEntries)
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	if err := s.persist(next); err != nil {
		return entry, err
	}
	s.entries = next
	return entry, nil
}

// Entries returns a copy of the history, newest first.
func (s *Store) Entries() []models.SearchHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SearchHistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the entry at index, 0 being the newest.
func (s *Store) Get(index int) (models.SearchHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return models.SearchHistoryEntry{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return s.entries[index], nil
}

// Restore returns the form state for the entry at index. It does not modify
// the history or trigger a search.
func (s *Store) Restore(index int) (FormState, error) {
	e, err := s.Get(index)
	if err != nil {
		return FormState{}, err
	}
	kw := append([]string(nil), e.Keywords...)
	return FormState{
		Keywords:     kw,
		KeywordsText: strings.Join(kw, ", "),
		AnalysisType: e.AnalysisType,
	}, nil
}

// Clear removes all entries and persists the empty history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(nil); err != nil {
		return err
	}
	s.entries = nil
	return nil
}
