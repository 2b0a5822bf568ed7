package labd

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

var (
	ErrRunNotFound  = errors.New("experiment not found")
	ErrRunTerminal  = errors.New("experiment is terminal")
	ErrRunIDMissing = errors.New("experiment id is required")
	ErrRunExists    = errors.New("experiment already exists")
)

// Results holds whichever result set the experiment kind produces.
type Results struct {
	Individual *experiment.IndividualResults `json:"individual,omitempty"`
	AllMethods *experiment.AllMethodsResults `json:"all_methods,omitempty"`
	Genetic    *experiment.GAReportData      `json:"genetic,omitempty"`
}

// Record is one experiment run. Store methods hand out copies.
type Record struct {
	ID              string                  `json:"id"`
	Kind            models.ExperimentKind   `json:"kind"`
	Status          models.ExperimentStatus `json:"status"`
	Problem         models.ProblemConfig    `json:"problem"`
	Repetitions     int                     `json:"repetitions"`
	Seed            int64                   `json:"seed,omitempty"`
	CallbackURL     string                  `json:"callback_url,omitempty"`
	CreatedAtUnixMs int64                   `json:"created_at_unix_ms"`
	StartedAtUnixMs int64                   `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64                   `json:"ended_at_unix_ms,omitempty"`
	Error           string                  `json:"error,omitempty"`
	Results         *Results                `json:"results,omitempty"`
}

// Summary returns the record without its results.
func (r Record) Summary() Record {
	r.Results = nil
	return r
}

// Store keeps experiment records in memory. Terminal records are copied to
// the archive when one is configured, and lookups fall back to it.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // creation order
	archive Archive
	log     *slog.Logger
}

func NewStore(archive Archive) *Store {
	return &Store{
		records: make(map[string]*Record),
		archive: archive,
		log:     logger.Default,
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a pending record. An empty ID gets a generated UUID.
func (s *Store) Create(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if s.archive != nil {
		// Client-chosen IDs must not shadow records from earlier processes.
		_, archived, err := s.archive.Get(rec.ID)
		if err != nil {
			return Record{}, fmt.Errorf("check archive for %s: %w", rec.ID, err)
		}
		if archived {
			return Record{}, fmt.Errorf("%w: %s", ErrRunExists, rec.ID)
		}
	}
	if _, exists := s.records[rec.ID]; exists {
		return Record{}, fmt.Errorf("%w: %s", ErrRunExists, rec.ID)
	}

	rec.Status = models.ExperimentStatusPending
	rec.CreatedAtUnixMs = nowUnixMs()
	rec.StartedAtUnixMs = 0
	rec.EndedAtUnixMs = 0
	rec.Error = ""
	rec.Results = nil
	s.records[rec.ID] = &rec
	s.order = append(s.order, rec.ID)
	return rec, nil
}

// Get returns a copy of the record, consulting the archive on a miss.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[id]
	if ok {
		out := *rec
		s.mu.RUnlock()
		return out, true
	}
	s.mu.RUnlock()

	if s.archive == nil {
		return Record{}, false
	}
	archived, found, err := s.archive.Get(id)
	if err != nil {
		s.log.Warn("archive lookup failed", "experiment_id", id, "error", err)
		return Record{}, false
	}
	return archived, found
}

// List returns record summaries newest first, optionally filtered by
// status. Archived records not held in memory follow, newest first.
func (s *Store) List(limit, offset int, status models.ExperimentStatus) []Record {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	all := make([]Record, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		all = append(all, s.records[s.order[i]].Summary())
	}
	s.mu.RUnlock()

	if s.archive != nil {
		archived, err := s.archive.List()
		if err != nil {
			s.log.Warn("archive list failed", "error", err)
		}
		sort.SliceStable(archived, func(i, j int) bool {
			return archived[i].CreatedAtUnixMs > archived[j].CreatedAtUnixMs
		})
		seen := make(map[string]bool, len(all))
		for _, rec := range all {
			seen[rec.ID] = true
		}
		for _, rec := range archived {
			if !seen[rec.ID] {
				all = append(all, rec.Summary())
			}
		}
	}

	filtered := all[:0]
	for _, rec := range all {
		if status == "" || rec.Status == status {
			filtered = append(filtered, rec)
		}
	}

	if offset >= len(filtered) {
		return []Record{}
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end]
}

// SetStatus moves a record to status. Terminal records cannot change status.
func (s *Store) SetStatus(id string, status models.ExperimentStatus, errMsg string) (Record, error) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return Record{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if rec.Status.IsTerminal() {
		out := *rec
		s.mu.Unlock()
		return out, fmt.Errorf("%w: %s is %s", ErrRunTerminal, id, out.Status)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}
	switch {
	case status == models.ExperimentStatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case status.IsTerminal():
		rec.EndedAtUnixMs = nowUnixMs()
	}
	out := *rec
	s.mu.Unlock()

	if status.IsTerminal() {
		s.archiveRecord(out)
	}
	return out, nil
}

// SetResults attaches results. Results may arrive after a record was
// cancelled; the archive copy is refreshed in that case.
func (s *Store) SetResults(id string, res Results) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	rec.Results = &res
	out := *rec
	s.mu.Unlock()

	if out.Status.IsTerminal() {
		s.archiveRecord(out)
	}
	return nil
}

func (s *Store) archiveRecord(rec Record) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(rec); err != nil {
		s.log.Warn("failed to archive experiment", "experiment_id", rec.ID, "error", err)
	}
}
