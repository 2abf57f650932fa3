package discovery

import (
	"context"
	"net"
	"testing"

	"NetSentra/internal/config"
	"NetSentra/internal/model"
	"NetSentra/internal/storage/memory"
)

func testOrchestrator(store model.Store) *Orchestrator {
	cfg := config.DiscoveryConfig{
		TargetNetwork:       "10.0.0.0/29",
		ICMPConcurrency:     2,
		ResolverConcurrency: 2,
		HostConcurrency:     2,
	}
	o := NewOrchestrator(store, cfg, "eth0")
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		return map[string]string{}, nil
	}
	o.pingSweep = func(context.Context, []string, int) []string { return nil }
	o.resolve = func(string) string { return "" }
	o.scanPorts = func(string) []PortResult { return nil }
	return o
}

func TestPassUpsertsARPHost(t *testing.T) {
	store := memory.NewStore()
	o := testOrchestrator(store)
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		return map[string]string{"10.0.0.5": "b8:27:eb:00:00:01"}, nil
	}
	o.resolve = func(ip string) string { return "pi.local" }
	o.scanPorts = func(ip string) []PortResult {
		return []PortResult{{Port: 22, Service: "ssh"}, {Port: 80, Service: "http"}}
	}

	if err := o.RunPass(context.Background()); err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}

	devices, _ := store.ListDevices(context.Background())
	if len(devices) != 1 {
		t.Fatalf("Expected 1 device, got %d", len(devices))
	}
	d := devices[0]
	if d.MAC != "b8:27:eb:00:00:01" || d.IP != "10.0.0.5" || d.Hostname != "pi.local" {
		t.Errorf("Device identity wrong: %+v", d)
	}
	if d.Vendor != "Raspberry Pi Foundation" || d.OSFamily != "Linux" {
		t.Errorf("Enrichment wrong: vendor=%q os=%q", d.Vendor, d.OSFamily)
	}
	if len(d.OpenPorts) != 2 || d.OpenPorts[0] != "22:ssh" {
		t.Errorf("Open ports wrong: %v", d.OpenPorts)
	}
	if d.DiscoveryMethod != "arp" {
		t.Errorf("Discovery method = %q", d.DiscoveryMethod)
	}

	scans, _ := store.ListScanResults(context.Background(), 10)
	if len(scans) != 1 || scans[0].OpenPorts != "22:ssh,80:http" {
		t.Errorf("Scan history wrong: %+v", scans)
	}
}

func TestPassARPWinsOverICMP(t *testing.T) {
	store := memory.NewStore()
	o := testOrchestrator(store)
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		return map[string]string{"10.0.0.5": "aa:bb:cc:dd:ee:01"}, nil
	}
	// ICMP sees the same host plus one more.
	o.pingSweep = func(context.Context, []string, int) []string {
		return []string{"10.0.0.5", "10.0.0.6"}
	}

	if err := o.RunPass(context.Background()); err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}

	devices, _ := store.ListDevices(context.Background())
	if len(devices) != 1 {
		t.Fatalf("Only the ARP host carries a MAC and may be upserted, got %d devices", len(devices))
	}
	if devices[0].DiscoveryMethod != "arp" {
		t.Errorf("ARP must win the merge, method = %q", devices[0].DiscoveryMethod)
	}

	// Both hosts still appear in the scan history.
	scans, _ := store.ListScanResults(context.Background(), 10)
	if len(scans) != 2 {
		t.Errorf("Expected 2 scan rows, got %d", len(scans))
	}
}

func TestPassPreservesKnownHostname(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	store.UpsertDevice(ctx, &model.Device{
		MAC:      "aa:bb:cc:dd:ee:01",
		IP:       "10.0.0.5",
		Hostname: "alice-pc",
	})

	o := testOrchestrator(store)
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		return map[string]string{"10.0.0.5": "aa:bb:cc:dd:ee:01"}, nil
	}
	// All resolvers come back empty this sweep.
	o.resolve = func(string) string { return "" }

	if err := o.RunPass(ctx); err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}

	d, _ := store.GetDeviceByMAC(ctx, "aa:bb:cc:dd:ee:01")
	if d == nil {
		t.Fatal("Device disappeared")
	}
	if d.Hostname != "alice-pc" {
		t.Errorf("Known hostname must survive a failed resolution, got %q", d.Hostname)
	}
	if d.LastSeen.IsZero() {
		t.Error("last_seen must be refreshed")
	}
}

func TestPassFreshHostnameReplacesStored(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	store.UpsertDevice(ctx, &model.Device{MAC: "aa:bb:cc:dd:ee:01", Hostname: "old-name"})

	o := testOrchestrator(store)
	o.arpSweep = func(string, *net.IPNet) (map[string]string, error) {
		return map[string]string{"10.0.0.5": "aa:bb:cc:dd:ee:01"}, nil
	}
	o.resolve = func(string) string { return "new-name" }

	if err := o.RunPass(ctx); err != nil {
		t.Fatalf("RunPass failed: %v", err)
	}
	d, _ := store.GetDeviceByMAC(ctx, "aa:bb:cc:dd:ee:01")
	if d.Hostname != "new-name" {
		t.Errorf("Fresh resolution must replace the stored name, got %q", d.Hostname)
	}
}

func TestPassInvalidTargetNetwork(t *testing.T) {
	o := testOrchestrator(memory.NewStore())
	o.cfg.TargetNetwork = "not-a-cidr"
	if err := o.RunPass(context.Background()); err == nil {
		t.Error("Expected an error for an invalid target network")
	}
}

func TestPingSweepCollectsResponders(t *testing.T) {
	orig := pingHostFunc
	defer func() { pingHostFunc = orig }()
	pingHostFunc = func(ip string) bool { return ip == "10.0.0.2" || ip == "10.0.0.4" }

	alive := PingSweep(context.Background(), []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}, 2)
	if len(alive) != 2 {
		t.Fatalf("Expected 2 responders, got %v", alive)
	}
}

func TestResolveHostnameChain(t *testing.T) {
	origDNS, origNB, origMDNS := reverseDNSFunc, netbiosFunc, mdnsFunc
	defer func() { reverseDNSFunc, netbiosFunc, mdnsFunc = origDNS, origNB, origMDNS }()

	reverseDNSFunc = func(string) string { return "" }
	netbiosFunc = func(string) string { return "NB-HOST" }
	mdnsFunc = func(string) string { return "mdns-host.local" }

	if got := ResolveHostname("10.0.0.5"); got != "NB-HOST" {
		t.Errorf("First non-empty resolver must win, got %q", got)
	}

	netbiosFunc = func(string) string { return "" }
	if got := ResolveHostname("10.0.0.5"); got != "mdns-host.local" {
		t.Errorf("mDNS fallback broken, got %q", got)
	}

	mdnsFunc = func(string) string { return "" }
	if got := ResolveHostname("10.0.0.5"); got != "" {
		t.Errorf("All-empty chain must return empty, got %q", got)
	}
}
