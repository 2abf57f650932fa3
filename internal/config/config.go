package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CaptureConfig controls the live packet source.
type CaptureConfig struct {
	Interface   string `yaml:"interface"` // empty selects automatically
	SnapshotLen int32  `yaml:"snapshot_len"`
	Promiscuous bool   `yaml:"promiscuous"`
}

// RulesConfig names the rule set and classification table.
type RulesConfig struct {
	DefaultRulePath string   `yaml:"default-rule-path"`
	RuleFiles       []string `yaml:"rule-files"`
	Classification  string   `yaml:"classification-file"`
}

// StatsConfig controls the traffic-counter flusher.
type StatsConfig struct {
	FlushInterval string `yaml:"flush_interval"`
}

// DiscoveryConfig controls the active discovery orchestrator.
type DiscoveryConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Interval            string `yaml:"interval"`
	TargetNetwork       string `yaml:"target_network"` // empty derives the local /24
	ICMPConcurrency     int    `yaml:"icmp_concurrency"`
	ResolverConcurrency int    `yaml:"resolver_concurrency"`
	HostConcurrency     int    `yaml:"host_concurrency"`
}

// ClickHouseConfig holds connection details for the ClickHouse backend.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SQLiteConfig holds the file path for the embedded backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig selects and configures the repository backend.
type StorageConfig struct {
	Backend    string           `yaml:"backend"` // memory, sqlite or clickhouse
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// NATSConfig controls EVE alert egress.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// AlertsConfig controls the alert emitter.
type AlertsConfig struct {
	QueueSize int        `yaml:"queue_size"`
	NATS      NATSConfig `yaml:"nats"`
}

// SMTPConfig holds the email notifier settings. Notification is enabled by
// setting a host.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // comma-separated recipients
}

// APIConfig controls the operator HTTP API.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration for the engine.
type Config struct {
	Capture   CaptureConfig   `yaml:"capture"`
	Rules     RulesConfig     `yaml:"rules"`
	Stats     StatsConfig     `yaml:"stats"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Storage   StorageConfig   `yaml:"storage"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	API       APIConfig       `yaml:"api"`

	// raw keeps the unmarshalled document for dot-path access to keys the
	// typed sections do not model. Unknown keys are ignored.
	raw map[string]interface{}
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Capture: CaptureConfig{SnapshotLen: 1600, Promiscuous: true},
		Rules: RulesConfig{
			DefaultRulePath: "configs/rules",
			RuleFiles:       []string{"netsentra.rules"},
			Classification:  "configs/classification.config",
		},
		Stats: StatsConfig{FlushInterval: "10s"},
		Discovery: DiscoveryConfig{
			Enabled:             true,
			Interval:            "5m",
			ICMPConcurrency:     50,
			ResolverConcurrency: 20,
			HostConcurrency:     4,
		},
		Storage: StorageConfig{Backend: "memory"},
		Alerts: AlertsConfig{
			QueueSize: 1024,
			NATS:      NATSConfig{Subject: "netsentra.alerts.eve"},
		},
		API: APIConfig{Enabled: true, ListenAddr: ":8000"},
	}
	return cfg
}

// LoadConfig reads the YAML configuration from filePath. A missing file is
// not an error: the built-in defaults are returned with a warning, per the
// principle that only an unusable configuration should stop startup.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file not found: %s. Using defaults.", filePath)
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg.raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values that the YAML left unset.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Capture.SnapshotLen <= 0 {
		c.Capture.SnapshotLen = def.Capture.SnapshotLen
	}
	if c.Stats.FlushInterval == "" {
		c.Stats.FlushInterval = def.Stats.FlushInterval
	}
	if c.Discovery.Interval == "" {
		c.Discovery.Interval = def.Discovery.Interval
	}
	if c.Discovery.ICMPConcurrency <= 0 {
		c.Discovery.ICMPConcurrency = def.Discovery.ICMPConcurrency
	}
	if c.Discovery.ResolverConcurrency <= 0 {
		c.Discovery.ResolverConcurrency = def.Discovery.ResolverConcurrency
	}
	if c.Discovery.HostConcurrency <= 0 {
		c.Discovery.HostConcurrency = def.Discovery.HostConcurrency
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Alerts.QueueSize <= 0 {
		c.Alerts.QueueSize = def.Alerts.QueueSize
	}
	if c.Alerts.NATS.Subject == "" {
		c.Alerts.NATS.Subject = def.Alerts.NATS.Subject
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = def.API.ListenAddr
	}
}

// Get resolves a dot-separated path ("rules.default-rule-path") against the
// raw document and returns def when any segment is missing.
func (c *Config) Get(path string, def interface{}) interface{} {
	var cur interface{} = map[string]interface{}(c.raw)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return def
		}
		cur, ok = m[key]
		if !ok {
			return def
		}
	}
	if cur == nil {
		return def
	}
	return cur
}

// StatsFlushInterval parses the stats flush interval, falling back to 10s.
func (c *Config) StatsFlushInterval() time.Duration {
	return parseDurationOr(c.Stats.FlushInterval, 10*time.Second)
}

// DiscoveryInterval parses the discovery cadence, falling back to 5m.
func (c *Config) DiscoveryInterval() time.Duration {
	return parseDurationOr(c.Discovery.Interval, 5*time.Minute)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
