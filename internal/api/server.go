// Package api is the operator HTTP surface: read alerts, stats, devices and
// scan history, and trigger discovery passes.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"NetSentra/internal/model"
)

const defaultListLimit = 50

// Scanner triggers on-demand discovery passes.
type Scanner interface {
	TriggerScan() bool
}

// Server serves the JSON API.
type Server struct {
	store   model.Store
	scanner Scanner
	router  *mux.Router
	httpSrv *http.Server
}

func NewServer(store model.Store, scanner Scanner, addr string) *Server {
	s := &Server{
		store:   store,
		scanner: scanner,
		router:  mux.NewRouter(),
	}
	s.routes()
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/alerts", s.listAlertsHandler).Methods("GET")
	s.router.HandleFunc("/api/alerts", s.createAlertHandler).Methods("POST")
	s.router.HandleFunc("/api/stats", s.latestStatsHandler).Methods("GET")
	s.router.HandleFunc("/api/stats/history", s.statsHistoryHandler).Methods("GET")
	s.router.HandleFunc("/api/status", s.statusHandler).Methods("GET")
	s.router.HandleFunc("/api/logs", s.systemLogsHandler).Methods("GET")
	s.router.HandleFunc("/api/devices", s.listDevicesHandler).Methods("GET")
	s.router.HandleFunc("/api/scans", s.listScansHandler).Methods("GET")
	s.router.HandleFunc("/api/scan", s.triggerScanHandler).Methods("POST")
	s.router.HandleFunc("/api/analytics/top-sources", s.topSourcesHandler).Methods("GET")
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server stopped: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func limitParam(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultListLimit
}

// listAlertsHandler returns recent security alerts; Low severity rows are
// system events served by /api/logs instead.
func (s *Server) listAlertsHandler(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.ListAlerts(r.Context(),
		model.AlertFilter{ExcludeSeverity: model.SeverityLow}, limitParam(r))
	if err != nil {
		http.Error(w, "failed to list alerts", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) createAlertHandler(w http.ResponseWriter, r *http.Request) {
	var a model.Alert
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, "invalid alert payload", http.StatusBadRequest)
		return
	}
	if a.Severity == "" {
		a.Severity = model.SeverityLow
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := s.store.InsertAlert(r.Context(), &a); err != nil {
		http.Error(w, "failed to store alert", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) latestStatsHandler(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.ListStats(r.Context(), 1)
	if err != nil {
		http.Error(w, "failed to read stats", http.StatusInternalServerError)
		return
	}
	if len(snaps) == 0 {
		writeJSON(w, http.StatusOK, model.StatsSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, snaps[0])
}

func (s *Server) statsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.ListStats(r.Context(), limitParam(r))
	if err != nil {
		http.Error(w, "failed to read stats", http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []model.StatsSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetStatus(r.Context())
	if err != nil {
		http.Error(w, "failed to read status", http.StatusInternalServerError)
		return
	}
	if st == nil {
		st = &model.SystemStatus{Status: "unknown"}
	}
	writeJSON(w, http.StatusOK, st)
}

// systemLogsHandler serves the Low-severity system events.
func (s *Server) systemLogsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.ListAlerts(r.Context(),
		model.AlertFilter{Severity: model.SeverityLow}, limitParam(r))
	if err != nil {
		http.Error(w, "failed to list logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) listDevicesHandler(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		http.Error(w, "failed to list devices", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []model.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) listScansHandler(w http.ResponseWriter, r *http.Request) {
	scans, err := s.store.ListScanResults(r.Context(), limitParam(r))
	if err != nil {
		http.Error(w, "failed to list scan results", http.StatusInternalServerError)
		return
	}
	if scans == nil {
		scans = []model.ScanResult{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) triggerScanHandler(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		http.Error(w, "discovery is disabled", http.StatusServiceUnavailable)
		return
	}
	if !s.scanner.TriggerScan() {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "scan already pending"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}

type sourceCount struct {
	SourceIP string `json:"source_ip"`
	Count    int    `json:"count"`
}

// topSourcesHandler returns the five most frequent alert sources over the
// recent window of security alerts.
func (s *Server) topSourcesHandler(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.ListAlerts(r.Context(),
		model.AlertFilter{ExcludeSeverity: model.SeverityLow}, 1000)
	if err != nil {
		http.Error(w, "failed to list alerts", http.StatusInternalServerError)
		return
	}
	counts := make(map[string]int)
	for _, a := range alerts {
		if a.SourceIP != "" {
			counts[a.SourceIP]++
		}
	}
	top := make([]sourceCount, 0, len(counts))
	for ip, n := range counts {
		top = append(top, sourceCount{SourceIP: ip, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].SourceIP < top[j].SourceIP
	})
	if len(top) > 5 {
		top = top[:5]
	}
	writeJSON(w, http.StatusOK, top)
}
