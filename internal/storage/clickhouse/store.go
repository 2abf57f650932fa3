// Package clickhouse is the repository backend for deployments that already
// run a ClickHouse cluster. Devices and system status use ReplacingMergeTree
// so upserts are last-write-wins on the ordering key.
package clickhouse

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"NetSentra/internal/config"
	"NetSentra/internal/model"
)

var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
    SourceIP      String,
    DestinationIP String,
    Protocol      String,
    AlertType     String,
    Severity      String,
    Description   String,
    SID           Int64,
    CreatedAt     DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(CreatedAt)
ORDER BY (CreatedAt);`,

	`CREATE TABLE IF NOT EXISTS traffic_stats (
    TotalPackets UInt64,
    TCPPackets   UInt64,
    UDPPackets   UInt64,
    ICMPPackets  UInt64,
    HTTPPackets  UInt64,
    HTTPSPackets UInt64,
    DNSPackets   UInt64,
    DHCPPackets  UInt64,
    CreatedAt    DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(CreatedAt)
ORDER BY (CreatedAt);`,

	`CREATE TABLE IF NOT EXISTS system_status (
    ID                 UInt8,
    Status             String,
    MonitoredInterface String,
    UpdatedAt          DateTime
) ENGINE = ReplacingMergeTree(UpdatedAt)
ORDER BY (ID);`,

	`CREATE TABLE IF NOT EXISTS devices (
    MACAddress        String,
    IPAddress         String,
    Vendor            String,
    Hostname          String,
    OSFamily          String,
    DeviceType        String,
    OpenPorts         String,
    ProtocolsDetected String,
    RiskLevel         String,
    DiscoveryMethod   String,
    LastSeen          DateTime
) ENGINE = ReplacingMergeTree(LastSeen)
ORDER BY (MACAddress);`,

	`CREATE TABLE IF NOT EXISTS discovery_logs (
    DeviceMAC  String,
    Method     String,
    Raw        String,
    CreatedAt  DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(CreatedAt)
ORDER BY (CreatedAt);`,

	`CREATE TABLE IF NOT EXISTS scan_results (
    IPAddress    String,
    Hostname     String,
    MACAddress   String,
    Status       String,
    OpenPorts    String,
    OSDetails    String,
    RiskLevel    String,
    ScanDuration Float64,
    CreatedAt    DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(CreatedAt)
ORDER BY (CreatedAt);`,
}

type Store struct {
	conn driver.Conn
}

// NewStore connects to ClickHouse and ensures the schema exists.
func NewStore(cfg config.ClickHouseConfig) (*Store, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	for _, stmt := range createTableStatements {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")
	return &Store{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

func (s *Store) insertRow(ctx context.Context, table string, values ...interface{}) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	if err := batch.Append(values...); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *Store) InsertAlert(ctx context.Context, a *model.Alert) error {
	return s.insertRow(ctx, "alerts",
		a.SourceIP, a.DestinationIP, a.Protocol, a.AlertType,
		a.Severity, a.Description, int64(a.SID), a.CreatedAt)
}

func (s *Store) ListAlerts(ctx context.Context, filter model.AlertFilter, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT SourceIP, DestinationIP, Protocol, AlertType, Severity, Description, SID, CreatedAt FROM alerts`
	var clauses []string
	var args []interface{}
	if filter.Severity != "" {
		clauses = append(clauses, "Severity = ?")
		args = append(args, filter.Severity)
	}
	if filter.ExcludeSeverity != "" {
		clauses = append(clauses, "Severity != ?")
		args = append(args, filter.ExcludeSeverity)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY CreatedAt DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var sid int64
		if err := rows.Scan(&a.SourceIP, &a.DestinationIP, &a.Protocol, &a.AlertType,
			&a.Severity, &a.Description, &sid, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.SID = int(sid)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) InsertStats(ctx context.Context, snap *model.StatsSnapshot) error {
	return s.insertRow(ctx, "traffic_stats",
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, snap.ICMPPackets,
		snap.HTTPPackets, snap.HTTPSPackets, snap.DNSPackets, snap.DHCPPackets, snap.CreatedAt)
}

func (s *Store) InsertStatsBasic(ctx context.Context, snap *model.StatsSnapshot) error {
	return s.insertRow(ctx,
		"traffic_stats (TotalPackets, TCPPackets, UDPPackets, ICMPPackets, CreatedAt)",
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, snap.ICMPPackets, snap.CreatedAt)
}

func (s *Store) ListStats(ctx context.Context, limit int) ([]model.StatsSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(ctx, `
SELECT TotalPackets, TCPPackets, UDPPackets, ICMPPackets,
       HTTPPackets, HTTPSPackets, DNSPackets, DHCPPackets, CreatedAt
FROM traffic_stats
ORDER BY CreatedAt DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []model.StatsSnapshot
	for rows.Next() {
		var snap model.StatsSnapshot
		if err := rows.Scan(&snap.TotalPackets, &snap.TCPPackets, &snap.UDPPackets, &snap.ICMPPackets,
			&snap.HTTPPackets, &snap.HTTPSPackets, &snap.DNSPackets, &snap.DHCPPackets, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, status, iface string) error {
	return s.insertRow(ctx, "system_status", uint8(1), status, iface, time.Now())
}

func (s *Store) GetStatus(ctx context.Context) (*model.SystemStatus, error) {
	var st model.SystemStatus
	row := s.conn.QueryRow(ctx, `
SELECT Status, MonitoredInterface, UpdatedAt FROM system_status FINAL WHERE ID = 1`)
	if err := row.Scan(&st.Status, &st.MonitoredInterface, &st.UpdatedAt); err != nil {
		// An empty table scans as an error; treat it as "no status yet".
		return nil, nil
	}
	return &st, nil
}

func (s *Store) GetDeviceByMAC(ctx context.Context, mac string) (*model.Device, error) {
	row := s.conn.QueryRow(ctx, `
SELECT MACAddress, IPAddress, Vendor, Hostname, OSFamily, DeviceType,
       OpenPorts, ProtocolsDetected, RiskLevel, DiscoveryMethod, LastSeen
FROM devices FINAL
WHERE MACAddress = ?`, strings.ToLower(mac))
	d, err := scanDevice(row.Scan)
	if err != nil {
		return nil, nil
	}
	return d, nil
}

func (s *Store) UpsertDevice(ctx context.Context, d *model.Device) error {
	lastSeen := d.LastSeen
	if lastSeen.IsZero() {
		lastSeen = time.Now()
	}
	return s.insertRow(ctx, "devices",
		strings.ToLower(d.MAC), d.IP, d.Vendor, d.Hostname, d.OSFamily, d.DeviceType,
		strings.Join(d.OpenPorts, ","), strings.Join(d.Protocols, ","),
		d.RiskLevel, d.DiscoveryMethod, lastSeen)
}

func (s *Store) ListDevices(ctx context.Context) ([]model.Device, error) {
	rows, err := s.conn.Query(ctx, `
SELECT MACAddress, IPAddress, Vendor, Hostname, OSFamily, DeviceType,
       OpenPorts, ProtocolsDetected, RiskLevel, DiscoveryMethod, LastSeen
FROM devices FINAL
ORDER BY LastSeen DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
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
	return s.insertRow(ctx, "discovery_logs", strings.ToLower(deviceMAC), method, raw, time.Now())
}

func (s *Store) SaveScanResult(ctx context.Context, r *model.ScanResult) error {
	return s.insertRow(ctx, "scan_results",
		r.IPAddress, r.Hostname, r.MACAddress, r.Status, r.OpenPorts,
		r.OSDetails, r.RiskLevel, r.ScanDuration, r.CreatedAt)
}

func (s *Store) ListScanResults(ctx context.Context, limit int) ([]model.ScanResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(ctx, `
SELECT IPAddress, Hostname, MACAddress, Status, OpenPorts,
       OSDetails, RiskLevel, ScanDuration, CreatedAt
FROM scan_results
ORDER BY CreatedAt DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan results: %w", err)
	}
	defer rows.Close()

	var out []model.ScanResult
	for rows.Next() {
		var r model.ScanResult
		if err := rows.Scan(&r.IPAddress, &r.Hostname, &r.MACAddress, &r.Status, &r.OpenPorts,
			&r.OSDetails, &r.RiskLevel, &r.ScanDuration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.conn.Close()
}
