// Package discovery enumerates and profiles hosts on the local network:
// ARP + ICMP sweeps, name resolution, port fingerprinting, vendor lookup
// and risk scoring, persisted through the repository.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"NetSentra/internal/config"
	"NetSentra/internal/model"
	"NetSentra/internal/risk"
)

var timeNow = time.Now

// Orchestrator composes the sweeps, resolvers and fingerprinting into one
// discovery pass. The stage functions are fields so tests can run a full
// pass without touching the network.
type Orchestrator struct {
	store model.Store
	cfg   config.DiscoveryConfig
	iface string

	arpSweep  func(iface string, network *net.IPNet) (map[string]string, error)
	pingSweep func(ctx context.Context, ips []string, concurrency int) []string
	resolve   func(ip string) string
	scanPorts func(ip string) []PortResult
	localCIDR func() (*net.IPNet, error)
}

// host is one merged sweep result.
type host struct {
	IP     string
	MAC    string
	Method string
}

func NewOrchestrator(store model.Store, cfg config.DiscoveryConfig, iface string) *Orchestrator {
	return &Orchestrator{
		store:     store,
		cfg:       cfg,
		iface:     iface,
		arpSweep:  ARPSweep,
		pingSweep: PingSweep,
		resolve:   ResolveHostname,
		scanPorts: ScanPorts,
		localCIDR: localNetwork,
	}
}

// localNetwork derives the primary /24 from the outbound IP. Dialing UDP
// does not send anything; it only selects a route.
func localNetwork() (*net.IPNet, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("failed to determine outbound address: %w", err)
	}
	defer conn.Close()
	ip := conn.LocalAddr().(*net.UDPAddr).IP.To4()
	if ip == nil {
		return nil, fmt.Errorf("outbound address is not IPv4")
	}
	return &net.IPNet{
		IP:   ip.Mask(net.CIDRMask(24, 32)),
		Mask: net.CIDRMask(24, 32),
	}, nil
}

// RunPass executes one full discovery pass: sweep, merge, resolve,
// fingerprint, score, persist.
func (o *Orchestrator) RunPass(ctx context.Context) error {
	network, err := o.targetNetwork()
	if err != nil {
		return err
	}
	log.Printf("[Discovery] Starting pass over %s", network)

	hosts := o.sweep(ctx, network)
	if len(hosts) == 0 {
		log.Printf("[Discovery] No hosts found in %s", network)
		return nil
	}
	log.Printf("[Discovery] %d host(s) responded", len(hosts))

	hostnames := o.resolveAll(hosts)
	o.profileAll(ctx, hosts, hostnames)
	return nil
}

func (o *Orchestrator) targetNetwork() (*net.IPNet, error) {
	if o.cfg.TargetNetwork != "" {
		_, network, err := net.ParseCIDR(o.cfg.TargetNetwork)
		if err != nil {
			return nil, fmt.Errorf("invalid target network %q: %w", o.cfg.TargetNetwork, err)
		}
		return network, nil
	}
	return o.localCIDR()
}

// sweep merges the ARP and ICMP results by IP. ARP wins: it proves layer-2
// adjacency and carries the MAC.
func (o *Orchestrator) sweep(ctx context.Context, network *net.IPNet) []host {
	merged := make(map[string]host)

	arpHosts, err := o.arpSweep(o.iface, network)
	if err != nil {
		log.Printf("[Discovery] ARP sweep failed: %v", err)
	}
	for ip, mac := range arpHosts {
		merged[ip] = host{IP: ip, MAC: mac, Method: "arp"}
	}

	for _, ip := range o.pingSweep(ctx, HostsInNetwork(network), o.cfg.ICMPConcurrency) {
		if _, seen := merged[ip]; !seen {
			merged[ip] = host{IP: ip, Method: "icmp"}
		}
	}

	out := make([]host, 0, len(merged))
	for _, h := range merged {
		out = append(out, h)
	}
	return out
}

// resolveAll runs the resolver chain over the host set with a bounded pool.
func (o *Orchestrator) resolveAll(hosts []host) map[string]string {
	concurrency := o.cfg.ResolverConcurrency
	if concurrency <= 0 {
		concurrency = 20
	}
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	names := make(map[string]string)

	var wg sync.WaitGroup
	for _, h := range hosts {
		wg.Add(1)
		sem <- struct{}{}
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()
			if name := o.resolve(ip); name != "" {
				mu.Lock()
				names[ip] = name
				mu.Unlock()
			}
		}(h.IP)
	}
	wg.Wait()
	return names
}

// profileAll fingerprints, scores and persists each host with small
// host-level parallelism; the port scan itself stays serial per host.
func (o *Orchestrator) profileAll(ctx context.Context, hosts []host, hostnames map[string]string) {
	concurrency := o.cfg.HostConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, h := range hosts {
		wg.Add(1)
		sem <- struct{}{}
		go func(h host) {
			defer wg.Done()
			defer func() { <-sem }()
			o.profileHost(ctx, h, hostnames[h.IP])
		}(h)
	}
	wg.Wait()
}

func (o *Orchestrator) profileHost(ctx context.Context, h host, hostname string) {
	start := timeNow()

	ports := o.scanPorts(h.IP)
	openPorts := make([]int, 0, len(ports))
	portLabels := make([]string, 0, len(ports))
	for _, p := range ports {
		openPorts = append(openPorts, p.Port)
		portLabels = append(portLabels, fmt.Sprintf("%d:%s", p.Port, p.Service))
	}
	protocols := InferProtocols(openPorts)
	osFamily := InferOS(openPorts)
	vendor := LookupVendor(h.MAC)
	assessment := risk.Calculate(openPorts, protocols, osFamily, vendor)

	// A previously-learned hostname survives a sweep where resolution came
	// back empty.
	if hostname == "" && h.MAC != "" {
		if stored, err := o.store.GetDeviceByMAC(ctx, h.MAC); err == nil && stored != nil {
			hostname = stored.Hostname
		}
	}

	if h.MAC != "" {
		device := &model.Device{
			IP:              h.IP,
			MAC:             strings.ToLower(h.MAC),
			Vendor:          vendor,
			Hostname:        hostname,
			OSFamily:        osFamily,
			DeviceType:      deviceType(vendor, osFamily),
			OpenPorts:       portLabels,
			Protocols:       protocols,
			RiskLevel:       assessment.Level,
			DiscoveryMethod: h.Method,
			LastSeen:        timeNow(),
		}
		if err := o.store.UpsertDevice(ctx, device); err != nil {
			log.Printf("[Discovery] Failed to upsert device %s: %v", h.IP, err)
		}
		raw := fmt.Sprintf("%s reply from %s (%s), %d open port(s), risk %d",
			strings.ToUpper(h.Method), h.IP, h.MAC, len(ports), assessment.Score)
		if err := o.store.LogDiscovery(ctx, h.MAC, h.Method, raw); err != nil {
			log.Printf("[Discovery] Failed to log discovery of %s: %v", h.IP, err)
		}
	}

	result := &model.ScanResult{
		IPAddress:    h.IP,
		Hostname:     hostname,
		MACAddress:   strings.ToLower(h.MAC),
		Status:       "up",
		OpenPorts:    strings.Join(portLabels, ","),
		OSDetails:    osFamily,
		RiskLevel:    assessment.Level,
		ScanDuration: timeNow().Sub(start).Seconds(),
		CreatedAt:    timeNow(),
	}
	if err := o.store.SaveScanResult(ctx, result); err != nil {
		log.Printf("[Discovery] Failed to save scan result for %s: %v", h.IP, err)
	}
}

// deviceType is a coarse guess from vendor and OS hints.
func deviceType(vendor, osFamily string) string {
	v := strings.ToLower(vendor)
	switch {
	case strings.Contains(v, "raspberry"):
		return "Single-board computer"
	case strings.Contains(v, "vmware"), strings.Contains(v, "virtualbox"),
		strings.Contains(v, "qemu"), strings.Contains(v, "xensource"):
		return "Virtual machine"
	case strings.Contains(v, "espressif"):
		return "IoT device"
	case strings.Contains(v, "cisco"), strings.Contains(v, "tp-link"),
		strings.Contains(v, "netgear"), strings.Contains(v, "ubiquiti"),
		strings.Contains(v, "d-link"):
		return "Network equipment"
	case osFamily == "Windows" || osFamily == "Linux":
		return "Computer"
	default:
		return "Unknown"
	}
}
