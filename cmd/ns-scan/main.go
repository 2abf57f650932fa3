package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"NetSentra/internal/capture"
	"NetSentra/internal/config"
	"NetSentra/internal/discovery"
	"NetSentra/internal/storage"
)

// ns-scan runs a single discovery pass and prints what it found. With the
// default memory backend the results are printed and gone; point the config
// at sqlite or clickhouse to keep them.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	network := flag.String("network", "", "CIDR to scan (overrides the configured target)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall pass timeout")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *network != "" {
		cfg.Discovery.TargetNetwork = *network
	}

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer store.Close()

	iface, err := capture.SelectInterface(cfg.Capture.Interface)
	if err != nil {
		log.Fatalf("No usable interface: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	orch := discovery.NewOrchestrator(store, cfg.Discovery, iface)
	if err := orch.RunPass(ctx); err != nil {
		log.Fatalf("Discovery pass failed: %v", err)
	}

	scans, err := store.ListScanResults(ctx, 1024)
	if err != nil {
		log.Fatalf("Failed to read scan results: %v", err)
	}
	fmt.Printf("%-16s %-18s %-20s %-8s %-6s %s\n",
		"IP", "MAC", "HOSTNAME", "OS", "RISK", "OPEN PORTS")
	for _, s := range scans {
		ports := s.OpenPorts
		if ports == "" {
			ports = "-"
		}
		fmt.Printf("%-16s %-18s %-20s %-8s %-6s %s\n",
			s.IPAddress, orDash(s.MACAddress), orDash(s.Hostname),
			orDash(s.OSDetails), s.RiskLevel, ports)
	}
	fmt.Printf("%d host(s) scanned\n", len(scans))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
