// Package memory is the in-process repository backend. It is the default
// when no storage is configured and doubles as the test store.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"NetSentra/internal/model"
)

// maxRows bounds each append-only table so an unattended engine does not
// grow without limit.
const maxRows = 10000

type discoveryLog struct {
	DeviceMAC string
	Method    string
	Raw       string
	CreatedAt time.Time
}

// Store keeps everything in slices and a MAC-keyed device map.
type Store struct {
	mu        sync.Mutex
	alerts    []model.Alert
	stats     []model.StatsSnapshot
	status    *model.SystemStatus
	devices   map[string]model.Device
	logs      []discoveryLog
	scans     []model.ScanResult
}

func NewStore() *Store {
	return &Store{devices: make(map[string]model.Device)}
}

func (s *Store) InsertAlert(_ context.Context, a *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = appendBounded(s.alerts, *a)
	return nil
}

func (s *Store) ListAlerts(_ context.Context, filter model.AlertFilter, limit int) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Alert, 0, limit)
	// Newest first.
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.ExcludeSeverity != "" && a.Severity == filter.ExcludeSeverity {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) InsertStats(_ context.Context, snap *model.StatsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = appendBounded(s.stats, *snap)
	return nil
}

func (s *Store) InsertStatsBasic(_ context.Context, snap *model.StatsSnapshot) error {
	basic := model.StatsSnapshot{
		TotalPackets: snap.TotalPackets,
		TCPPackets:   snap.TCPPackets,
		UDPPackets:   snap.UDPPackets,
		ICMPPackets:  snap.ICMPPackets,
		CreatedAt:    snap.CreatedAt,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = appendBounded(s.stats, basic)
	return nil
}

func (s *Store) ListStats(_ context.Context, limit int) ([]model.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StatsSnapshot, 0, limit)
	for i := len(s.stats) - 1; i >= 0; i-- {
		out = append(out, s.stats[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UpdateStatus(_ context.Context, status, iface string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &model.SystemStatus{
		Status:             status,
		MonitoredInterface: iface,
		UpdatedAt:          time.Now(),
	}
	return nil
}

func (s *Store) GetStatus(_ context.Context) (*model.SystemStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil, nil
	}
	st := *s.status
	return &st, nil
}

func (s *Store) GetDeviceByMAC(_ context.Context, mac string) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[normalizeMAC(mac)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *Store) UpsertDevice(_ context.Context, d *model.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev := *d
	if dev.LastSeen.IsZero() {
		dev.LastSeen = time.Now()
	}
	s.devices[normalizeMAC(dev.MAC)] = dev
	return nil
}

func (s *Store) ListDevices(_ context.Context) ([]model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) LogDiscovery(_ context.Context, deviceMAC, method, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = appendBounded(s.logs, discoveryLog{
		DeviceMAC: normalizeMAC(deviceMAC),
		Method:    method,
		Raw:       raw,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *Store) SaveScanResult(_ context.Context, r *model.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans = appendBounded(s.scans, *r)
	return nil
}

func (s *Store) ListScanResults(_ context.Context, limit int) ([]model.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ScanResult, 0, limit)
	for i := len(s.scans) - 1; i >= 0; i-- {
		out = append(out, s.scans[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Close() error { return nil }

func appendBounded[T any](rows []T, row T) []T {
	rows = append(rows, row)
	if len(rows) > maxRows {
		rows = rows[len(rows)-maxRows:]
	}
	return rows
}

func normalizeMAC(mac string) string {
	return strings.ToLower(mac)
}
