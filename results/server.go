// Package results HTTP API for recording and querying evaluation runs.
package results

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Server exposes Store over HTTP: POST /record, GET /aggregates.
type Server struct {
	Store Store
	Addr  string
}

// NewServer creates a server that uses the given Store.
func NewServer(store Store, addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{Store: store, Addr: addr}
}

// recordRequest is the JSON body for POST /record.
type recordRequest struct {
	Name       string  `json:"name"`
	Epoch      int     `json:"epoch"`
	Steps      int     `json:"steps"`
	AccSrc2Trg float64 `json:"acc_src2trg"`
	AccTrg2Src float64 `json:"acc_trg2src"`
	Score      float64 `json:"score"`
	At         string  `json:"at,omitempty"` // RFC3339
}

// aggregateResponse is the JSON response for GET /aggregates.
type aggregateResponse struct {
	Aggregates []Aggregate `json:"aggregates"`
}

// Handler returns the HTTP handler for the server routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /record", s.handleRecord)
	mux.HandleFunc("PUT /record", s.handleRecord)
	mux.HandleFunc("GET /aggregates", s.handleAggregates)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe starts the HTTP server. Use go s.ListenAndServe() to run in background.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.Addr, s.Handler())
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	run := Run{
		Name:       req.Name,
		Epoch:      req.Epoch,
		Steps:      req.Steps,
		AccSrc2Trg: req.AccSrc2Trg,
		AccTrg2Src: req.AccTrg2Src,
		Score:      req.Score,
	}
	if req.At != "" {
		if t, err := time.Parse(time.RFC3339, req.At); err == nil {
			run.At = t
		}
	}
	if err := s.Store.Record(r.Context(), run); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	q := Query{
		Name:    r.URL.Query().Get("name"),
		GroupBy: r.URL.Query().Get("group_by"),
		Limit:   100,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			q.From = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			q.To = t
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			q.Limit = n
		}
	}
	agg, err := s.Store.Query(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(aggregateResponse{Aggregates: agg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
