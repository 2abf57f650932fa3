// Package sqlite is the embedded repository backend. It keeps the same
// logical schema as the ClickHouse backend in a single local file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"NetSentra/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	source_ip      TEXT,
	destination_ip TEXT,
	protocol       TEXT,
	alert_type     TEXT,
	severity       TEXT,
	description    TEXT,
	sid            INTEGER,
	created_at     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity);

CREATE TABLE IF NOT EXISTS traffic_stats (
	total_packets  INTEGER,
	tcp_packets    INTEGER,
	udp_packets    INTEGER,
	icmp_packets   INTEGER,
	http_packets   INTEGER,
	https_packets  INTEGER,
	dns_packets    INTEGER,
	dhcp_packets   INTEGER,
	created_at     TIMESTAMP
);

CREATE TABLE IF NOT EXISTS system_status (
	id                  INTEGER PRIMARY KEY CHECK (id = 1),
	status              TEXT,
	monitored_interface TEXT,
	updated_at          TIMESTAMP
);

CREATE TABLE IF NOT EXISTS devices (
	mac_address        TEXT PRIMARY KEY,
	ip_address         TEXT,
	vendor             TEXT,
	hostname           TEXT,
	os_family          TEXT,
	device_type        TEXT,
	open_ports         TEXT,
	protocols_detected TEXT,
	risk_level         TEXT,
	discovery_method   TEXT,
	last_seen          TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discovery_logs (
	device_mac TEXT,
	method     TEXT,
	raw        TEXT,
	created_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scan_results (
	ip_address    TEXT,
	hostname      TEXT,
	mac_address   TEXT,
	status        TEXT,
	open_ports    TEXT,
	os_details    TEXT,
	risk_level    TEXT,
	scan_duration REAL,
	created_at    TIMESTAMP
);
`

type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "./netsentra.sqlite"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) InsertAlert(ctx context.Context, a *model.Alert) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO alerts (source_ip, destination_ip, protocol, alert_type, severity, description, sid, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		a.SourceIP, a.DestinationIP, a.Protocol, a.AlertType, a.Severity, a.Description, a.SID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, filter model.AlertFilter, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
SELECT source_ip, destination_ip, protocol, alert_type, severity, description, sid, created_at
FROM alerts`
	var clauses []string
	var args []interface{}
	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, filter.Severity)
	}
	if filter.ExcludeSeverity != "" {
		clauses = append(clauses, "severity != ?")
		args = append(args, filter.ExcludeSeverity)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?;"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.SourceIP, &a.DestinationIP, &a.Protocol, &a.AlertType,
			&a.Severity, &a.Description, &a.SID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) InsertStats(ctx context.Context, snap *model.StatsSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO traffic_stats (total_packets, tcp_packets, udp_packets, icmp_packets,
	http_packets, https_packets, dns_packets, dhcp_packets, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, snap.ICMPPackets,
		snap.HTTPPackets, snap.HTTPSPackets, snap.DNSPackets, snap.DHCPPackets, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert stats: %w", err)
	}
	return nil
}

func (s *Store) InsertStatsBasic(ctx context.Context, snap *model.StatsSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO traffic_stats (total_packets, tcp_packets, udp_packets, icmp_packets, created_at)
VALUES (?, ?, ?, ?, ?);`,
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, snap.ICMPPackets, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert basic stats: %w", err)
	}
	return nil
}

func (s *Store) ListStats(ctx context.Context, limit int) ([]model.StatsSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT total_packets, tcp_packets, udp_packets, icmp_packets,
	COALESCE(http_packets, 0), COALESCE(https_packets, 0),
	COALESCE(dns_packets, 0), COALESCE(dhcp_packets, 0), created_at
FROM traffic_stats
ORDER BY created_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []model.StatsSnapshot
	for rows.Next() {
		var snap model.StatsSnapshot
		if err := rows.Scan(&snap.TotalPackets, &snap.TCPPackets, &snap.UDPPackets, &snap.ICMPPackets,
			&snap.HTTPPackets, &snap.HTTPSPackets, &snap.DNSPackets, &snap.DHCPPackets, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, status, iface string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO system_status (id, status, monitored_interface, updated_at)
VALUES (1, ?, ?, ?);`, status, iface, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

func (s *Store) GetStatus(ctx context.Context) (*model.SystemStatus, error) {
	var st model.SystemStatus
	err := s.db.QueryRowContext(ctx, `
SELECT status, monitored_interface, updated_at FROM system_status WHERE id = 1;`).
		Scan(&st.Status, &st.MonitoredInterface, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query status: %w", err)
	}
	return &st, nil
}

func (s *Store) GetDeviceByMAC(ctx context.Context, mac string) (*model.Device, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT mac_address, ip_address, vendor, hostname, os_family, device_type,
	open_ports, protocols_detected, risk_level, discovery_method, last_seen
FROM devices WHERE mac_address = ?;`, strings.ToLower(mac))
	d, err := scanDevice(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return d, nil
}

func (s *Store) UpsertDevice(ctx context.Context, d *model.Device) error {
	lastSeen := d.LastSeen
	if lastSeen.IsZero() {
		lastSeen = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO devices (mac_address, ip_address, vendor, hostname, os_family,
	device_type, open_ports, protocols_detected, risk_level, discovery_method, last_seen)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		strings.ToLower(d.MAC), d.IP, d.Vendor, d.Hostname, d.OSFamily, d.DeviceType,
		strings.Join(d.OpenPorts, ","), strings.Join(d.Protocols, ","),
		d.RiskLevel, d.DiscoveryMethod, lastSeen)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

func (s *Store) ListDevices(ctx context.Context) ([]model.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT mac_address, ip_address, vendor, hostname, os_family, device_type,
	open_ports, protocols_detected, risk_level, discovery_method, last_seen
FROM devices ORDER BY last_seen DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDevice(scan func(dest ...interface{}) error) (*model.Device, error) {
	var d model.Device
	var ports, protocols string
	if err := scan(&d.MAC, &d.IP, &d.Vendor, &d.Hostname, &d.OSFamily, &d.DeviceType,
		&ports, &protocols, &d.RiskLevel, &d.DiscoveryMethod, &d.LastSeen); err != nil {
		return nil, err
	}
	if ports != "" {
		d.OpenPorts = strings.Split(ports, ",")
	}
	if protocols != "" {
		d.Protocols = strings.Split(protocols, ",")
	}
	return &d, nil
}

func (s *Store) LogDiscovery(ctx context.Context, deviceMAC, method, raw string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO discovery_logs (device_mac, method, raw, created_at) VALUES (?, ?, ?, ?);`,
		strings.ToLower(deviceMAC), method, raw, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert discovery log: %w", err)
	}
	return nil
}

func (s *Store) SaveScanResult(ctx context.Context, r *model.ScanResult) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO scan_results (ip_address, hostname, mac_address, status, open_ports,
	os_details, risk_level, scan_duration, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.IPAddress, r.Hostname, r.MACAddress, r.Status, r.OpenPorts,
		r.OSDetails, r.RiskLevel, r.ScanDuration, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scan result: %w", err)
	}
	return nil
}

func (s *Store) ListScanResults(ctx context.Context, limit int) ([]model.ScanResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT ip_address, hostname, mac_address, status, open_ports,
	os_details, risk_level, scan_duration, created_at
FROM scan_results
ORDER BY created_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan results: %w", err)
	}
	defer rows.Close()

	var out []model.ScanResult
	for rows.Next() {
		var r model.ScanResult
		if err := rows.Scan(&r.IPAddress, &r.Hostname, &r.MACAddress, &r.Status, &r.OpenPorts,
			&r.OSDetails, &r.RiskLevel, &r.ScanDuration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
