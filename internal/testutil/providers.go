package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// PhraseRow is the demand served for one phrase.
type PhraseRow struct {
	Volume int
	CPC    float64
	KD     int
}

// SemrushServer serves phrase_this reports for known phrases and the
// provider's NOTHING FOUND error for the rest.
type SemrushServer struct {
	*httptest.Server

	mu    sync.Mutex
	rows  map[string]PhraseRow
	calls map[string]int
}

// NewSemrushServer starts a fake report endpoint, closed on test cleanup.
func NewSemrushServer(t *testing.T, rows map[string]PhraseRow) *SemrushServer {
	t.Helper()

	s := &SemrushServer{rows: rows, calls: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *SemrushServer) serve(w http.ResponseWriter, r *http.Request) {
	phrase := r.URL.Query().Get("phrase")

	s.mu.Lock()
	s.calls[phrase]++
	row, ok := s.rows[phrase]
	s.mu.Unlock()

	if !ok {
		_, _ = w.Write([]byte("ERROR 50 :: NOTHING FOUND"))
		return
	}
	_, _ = fmt.Fprintf(w, "Keyword;Search Volume;CPC;Keyword Difficulty Index\n%s;%d;%s;%d\n",
		phrase, row.Volume, strconv.FormatFloat(row.CPC, 'f', -1, 64), row.KD)
}

// Calls returns the number of requests received for phrase.
func (s *SemrushServer) Calls(phrase string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[phrase]
}

// TotalCalls returns the number of requests received.
func (s *SemrushServer) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// SuggestServer serves autocomplete payloads, [query, [suggestions...]].
// Unknown queries get an empty suggestion list.
type SuggestServer struct {
	*httptest.Server

	mu          sync.Mutex
	suggestions map[string][]string
	calls       int
}

// NewSuggestServer starts a fake autocomplete endpoint, closed on test cleanup.
func NewSuggestServer(t *testing.T, suggestions map[string][]string) *SuggestServer {
	t.Helper()

	s := &SuggestServer{suggestions: suggestions}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *SuggestServer) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	s.mu.Lock()
	s.calls++
	list := s.suggestions[q]
	s.mu.Unlock()

	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal([]interface{}{q, list})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// Calls returns the number of requests received.
func (s *SuggestServer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
