package model

import "context"

// AlertFilter narrows ListAlerts. Zero value means no filtering.
type AlertFilter struct {
	// Severity, when set, returns only alerts with that severity.
	Severity string
	// ExcludeSeverity, when set, drops alerts with that severity. The API
	// uses this to separate security alerts from Low/info system events.
	ExcludeSeverity string
}

// Store is the persistence boundary for alerts, stats, devices and scan
// history. All implementations must be safe for concurrent use; callers
// treat every error as logged and non-fatal.
type Store interface {
	InsertAlert(ctx context.Context, a *Alert) error
	ListAlerts(ctx context.Context, filter AlertFilter, limit int) ([]Alert, error)

	// InsertStats persists the extended counter shape. Backends whose schema
	// predates the extended counters reject it; the caller then retries with
	// InsertStatsBasic (total/tcp/udp/icmp only).
	InsertStats(ctx context.Context, s *StatsSnapshot) error
	InsertStatsBasic(ctx context.Context, s *StatsSnapshot) error
	ListStats(ctx context.Context, limit int) ([]StatsSnapshot, error)

	UpdateStatus(ctx context.Context, status, iface string) error
	GetStatus(ctx context.Context) (*SystemStatus, error)

	GetDeviceByMAC(ctx context.Context, mac string) (*Device, error)
	UpsertDevice(ctx context.Context, d *Device) error
	ListDevices(ctx context.Context) ([]Device, error)

	LogDiscovery(ctx context.Context, deviceMAC, method, raw string) error
	SaveScanResult(ctx context.Context, r *ScanResult) error
	ListScanResults(ctx context.Context, limit int) ([]ScanResult, error)

	Close() error
}
