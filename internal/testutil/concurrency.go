package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// ExecutionRecord holds the start and end times of a single source fetch.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// SlowSourceServer serves module sources over HTTP after a fixed delay and
// records when each fetch ran.
type SlowSourceServer struct {
	*httptest.Server

	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	sources        map[string]string
}

// NewSlowSourceServer starts a server for sources keyed by URL path.
func NewSlowSourceServer(t *testing.T, sleep time.Duration, sources map[string]string) *SlowSourceServer {
	t.Helper()
	s := &SlowSourceServer{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		sources:        sources,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *SlowSourceServer) serve(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	time.Sleep(s.sleepDuration)
	endTime := time.Now()

	s.mu.Lock()
	s.ExecutionTimes[r.URL.Path] = &ExecutionRecord{Start: startTime, End: endTime}
	s.mu.Unlock()

	src, ok := s.sources[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(src))
}

// Record returns the execution record of path.
func (s *SlowSourceServer) Record(path string) (*ExecutionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ExecutionTimes[path]
	return rec, ok
}

// Overlaps reports whether two records ran at the same time.
func Overlaps(a, b *ExecutionRecord) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
