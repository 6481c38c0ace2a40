package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/seo-optimizer/contentscore/scoring"
)

// MonthlyStats are the usage counters of one calendar month
type MonthlyStats struct {
	Evaluations         int       `json:"evaluations"`
	Previews            int       `json:"previews"`
	PageAnalyses        int       `json:"page_analyses"`
	AnalysisCacheHits   int       `json:"analysis_hits"`
	AnalysisCacheMisses int       `json:"analysis_misses"`
	ScoreSum            int       `json:"score_sum"`
	LastUpdated         time.Time `json:"last_updated"`
}

// AverageScore is the mean overall score of the month's evaluations
func (m MonthlyStats) AverageScore() float64 {
	if m.Evaluations == 0 {
		return 0
	}
	return float64(m.ScoreSum) / float64(m.Evaluations)
}

// Delta is a set of increments applied in one call
type Delta struct {
	Evaluations         int
	Previews            int
	PageAnalyses        int
	AnalysisCacheHits   int
	AnalysisCacheMisses int
	ScoreSum            int
}

// Storage keeps month-keyed counters and persists them to a JSON file
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	flushEvery  time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// StorageOption configures a Storage
type StorageOption func(*Storage)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) StorageOption {
	return func(s *Storage) {
		s.now = now
	}
}

// WithLogger sets the logger used for background write failures
func WithLogger(l *slog.Logger) StorageOption {
	return func(s *Storage) {
		s.log = l
	}
}

// WithFlushInterval sets how often counters are written in the background
func WithFlushInterval(d time.Duration) StorageOption {
	return func(s *Storage) {
		s.flushEvery = d
	}
}

// NewStorage creates the data directory if needed, loads stats.json and
// starts the background writer.
func NewStorage(dataDir string, opts ...StorageOption) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		flushEvery:  5 * time.Minute,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes the counters through a temporary file and a rename
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			s.log.Warn("failed to persist statistics", "error", err)
		}
	}
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

// requestWrite signals the writer without blocking; a pending request
// already covers this one.
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
	}
}

// Add applies d to the current month
func (s *Storage) Add(d Delta) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}
	stats.Evaluations += d.Evaluations
	stats.Previews += d.Previews
	stats.PageAnalyses += d.PageAnalyses
	stats.AnalysisCacheHits += d.AnalysisCacheHits
	stats.AnalysisCacheMisses += d.AnalysisCacheMisses
	stats.ScoreSum += d.ScoreSum
	stats.LastUpdated = s.now()

	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// RecordPreview counts one field preview
func (s *Storage) RecordPreview() {
	s.Add(Delta{Previews: 1})
}

// RecordAnalysis counts one page analysis and whether the cache served it
func (s *Storage) RecordAnalysis(cacheHit bool) {
	d := Delta{PageAnalyses: 1, AnalysisCacheMisses: 1}
	if cacheHit {
		d.AnalysisCacheHits, d.AnalysisCacheMisses = 1, 0
	}
	s.Add(d)
}

// CriterionEvaluated is part of scoring.Observer; per-criterion events are
// not counted.
func (s *Storage) CriterionEvaluated(scoring.Rule, scoring.CriterionResult) {}

// Evaluated counts one evaluation and its overall score
func (s *Storage) Evaluated(res scoring.Result) {
	s.Add(Delta{Evaluations: 1, ScoreSum: res.Overall.Score})
}

// GetCurrentStats returns the counters of the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// GetMonthlyStats returns the counters of a "YYYY-MM" month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths lists the months with counters, newest first
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Cleanup drops every month older than the last retainMonths months,
// counting the current one.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	keep := make(map[string]bool, retainMonths)
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < retainMonths; i++ {
		keep[first.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.log.Debug("statistics cleaned up", "retain_months", retainMonths)
}

// Shutdown stops the background writer and writes the counters one last
// time. It is safe to call more than once.
func (s *Storage) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		err = s.save()
	})
	return err
}
