package mocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// DataGovServer is a stand-in for the data.gov.in resource endpoint. Records
// are keyed by the upper-case district filter.
type DataGovServer struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[string][]map[string]any
	statuses map[string]int
	calls    map[string]int
	apiKeys  []string
}

func NewDataGovServer() *DataGovServer {
	s := &DataGovServer{
		records:  make(map[string][]map[string]any),
		statuses: make(map[string]int),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *DataGovServer) SetRecords(district string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[district] = records
}

// FailWith makes requests for district answer with status.
func (s *DataGovServer) FailWith(district string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[district] = status
}

func (s *DataGovServer) Calls(district string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[district]
}

func (s *DataGovServer) APIKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.apiKeys...)
}

func (s *DataGovServer) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	district := q.Get("filters[district_name]")

	s.mu.Lock()
	s.calls[district]++
	s.apiKeys = append(s.apiKeys, q.Get("api-key"))
	status, failing := s.statuses[district]
	records := s.records[district]
	s.mu.Unlock()

	if failing {
		http.Error(w, "upstream unavailable", status)
		return
	}
	if records == nil {
		records = []map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"total":   len(records),
		"records": records,
	})
}
