package discovery

import (
	"strings"
	"time"

	"github.com/miekg/dns"
)

const resolveTimeout = 1 * time.Second

// The three resolution strategies are package-level function vars so tests
// can substitute them.
var (
	reverseDNSFunc = reverseDNS
	netbiosFunc    = func(ip string) string { return queryNetBIOS(ip, resolveTimeout) }
	mdnsFunc       = reverseMDNS
)

// ResolveHostname tries reverse DNS, then NetBIOS node status, then mDNS.
// First non-empty name wins; "" means all three came back empty.
func ResolveHostname(ip string) string {
	if name := reverseDNSFunc(ip); name != "" {
		return name
	}
	if name := netbiosFunc(ip); name != "" {
		return name
	}
	return mdnsFunc(ip)
}

// reverseDNS queries the system resolver for the PTR record of ip.
func reverseDNS(ip string) string {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return ""
	}
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		return ""
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)
	c := &dns.Client{Timeout: resolveTimeout}
	resp, _, err := c.Exchange(m, cfg.Servers[0]+":"+cfg.Port)
	if err != nil || resp == nil {
		return ""
	}
	return firstPTR(resp)
}

// reverseMDNS sends the PTR question to the mDNS multicast group directly.
// Hosts answer for their own address; no resolver involved.
func reverseMDNS(ip string) string {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return ""
	}
	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)
	c := &dns.Client{Net: "udp", Timeout: resolveTimeout}
	resp, _, err := c.Exchange(m, "224.0.0.251:5353")
	if err != nil || resp == nil {
		return ""
	}
	return firstPTR(resp)
}

func firstPTR(resp *dns.Msg) string {
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, ".")
		}
	}
	return ""
}
