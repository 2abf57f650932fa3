package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NetSentra/internal/model"
	"NetSentra/internal/storage/memory"
)

type fakeScanner struct {
	accept    bool
	triggered int
}

func (f *fakeScanner) TriggerScan() bool {
	f.triggered++
	return f.accept
}

func newTestServer(t *testing.T) (*Server, *memory.Store, *fakeScanner) {
	t.Helper()
	store := memory.NewStore()
	scanner := &fakeScanner{accept: true}
	return NewServer(store, scanner, ":0"), store, scanner
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListAlertsExcludesSystemEvents(t *testing.T) {
	s, store, _ := newTestServer(t)
	ctx := context.Background()
	store.InsertAlert(ctx, &model.Alert{SourceIP: "10.0.0.1", Severity: model.SeverityHigh, AlertType: "Port Scan Detected"})
	store.InsertAlert(ctx, &model.Alert{Severity: model.SeverityLow, AlertType: "System", Description: "Monitoring started"})

	rec := doRequest(t, s, "GET", "/api/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var alerts []model.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(alerts) != 1 || alerts[0].SourceIP != "10.0.0.1" {
		t.Errorf("Expected only the security alert, got %+v", alerts)
	}

	rec = doRequest(t, s, "GET", "/api/logs", "")
	var logs []model.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(logs) != 1 || logs[0].Description != "Monitoring started" {
		t.Errorf("Expected only the system event, got %+v", logs)
	}
}

func TestEmptyListsSerializeAsArrays(t *testing.T) {
	s, _, _ := newTestServer(t)
	for _, path := range []string{"/api/alerts", "/api/stats/history", "/api/devices", "/api/scans", "/api/logs"} {
		rec := doRequest(t, s, "GET", path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
			continue
		}
		body := strings.TrimSpace(rec.Body.String())
		if !strings.HasPrefix(body, "[") {
			t.Errorf("%s must serialize an empty array, got %q", path, body)
		}
	}
}

func TestCreateAlert(t *testing.T) {
	s, store, _ := newTestServer(t)
	body := `{"source_ip":"192.168.1.7","severity":"High","alert_type":"Manual","description":"operator entry"}`
	rec := doRequest(t, s, "POST", "/api/alerts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Status = %d, body %s", rec.Code, rec.Body.String())
	}
	alerts, _ := store.ListAlerts(context.Background(), model.AlertFilter{}, 10)
	if len(alerts) != 1 || alerts[0].SourceIP != "192.168.1.7" {
		t.Errorf("Alert not stored: %+v", alerts)
	}
	if alerts[0].CreatedAt.IsZero() {
		t.Error("Handler must stamp created_at")
	}
}

func TestCreateAlertBadPayload(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, "POST", "/api/alerts", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestLatestStats(t *testing.T) {
	s, store, _ := newTestServer(t)
	ctx := context.Background()
	store.InsertStats(ctx, &model.StatsSnapshot{TotalPackets: 10, CreatedAt: time.Now().Add(-time.Minute)})
	store.InsertStats(ctx, &model.StatsSnapshot{TotalPackets: 25, CreatedAt: time.Now()})

	rec := doRequest(t, s, "GET", "/api/stats", "")
	var snap model.StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if snap.TotalPackets != 25 {
		t.Errorf("Expected the newest snapshot, got %+v", snap)
	}

	rec = doRequest(t, s, "GET", "/api/stats/history?limit=1", "")
	var history []model.StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("limit param ignored, got %d rows", len(history))
	}
}

func TestStatusUnknownBeforeStart(t *testing.T) {
	s, store, _ := newTestServer(t)
	rec := doRequest(t, s, "GET", "/api/status", "")
	var st model.SystemStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if st.Status != "unknown" {
		t.Errorf("Status = %q, want unknown", st.Status)
	}

	store.UpdateStatus(context.Background(), "running", "wlan0")
	rec = doRequest(t, s, "GET", "/api/status", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "running" || st.MonitoredInterface != "wlan0" {
		t.Errorf("Unexpected status: %+v", st)
	}
}

func TestTriggerScan(t *testing.T) {
	s, _, scanner := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/scan", "")
	if rec.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want 202", rec.Code)
	}

	scanner.accept = false
	rec = doRequest(t, s, "POST", "/api/scan", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409 when a scan is pending", rec.Code)
	}
	if scanner.triggered != 2 {
		t.Errorf("Scanner called %d times", scanner.triggered)
	}
}

func TestTriggerScanDisabled(t *testing.T) {
	s := NewServer(memory.NewStore(), nil, ":0")
	rec := doRequest(t, s, "POST", "/api/scan", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503 without discovery", rec.Code)
	}
}

func TestTopSources(t *testing.T) {
	s, store, _ := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		store.InsertAlert(ctx, &model.Alert{SourceIP: "10.0.0.1", Severity: model.SeverityHigh})
	}
	for i := 0; i < 5; i++ {
		store.InsertAlert(ctx, &model.Alert{SourceIP: "10.0.0.2", Severity: model.SeverityMedium})
	}
	store.InsertAlert(ctx, &model.Alert{SourceIP: "10.0.0.3", Severity: model.SeverityLow}) // system event

	rec := doRequest(t, s, "GET", "/api/analytics/top-sources", "")
	var top []sourceCount
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 sources, got %+v", top)
	}
	if top[0].SourceIP != "10.0.0.2" || top[0].Count != 5 {
		t.Errorf("Ranking wrong: %+v", top)
	}
}
