// Package stats counts traffic per protocol category and flushes periodic
// snapshots to the store.
package stats

import (
	"sync"
	"time"

	"NetSentra/internal/model"
)

var timeNow = time.Now

// Collector accumulates packet counters for the current window. Snapshot
// atomically reads and resets them, so consecutive windows are disjoint.
type Collector struct {
	mu           sync.Mutex
	totalPackets uint64
	tcpPackets   uint64
	udpPackets   uint64
	icmpPackets  uint64
	httpPackets  uint64
	httpsPackets uint64
	dnsPackets   uint64
	dhcpPackets  uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

// Update categorizes one decoded packet. TCP port 80 counts as HTTP and 443
// as HTTPS; UDP port 53 counts as DNS and 67/68 as DHCP. Either endpoint
// port qualifies.
func (c *Collector) Update(pkt *model.PacketInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalPackets++
	src, dst := pkt.FiveTuple.SrcPort, pkt.FiveTuple.DstPort
	switch pkt.FiveTuple.Protocol {
	case model.ProtoTCP:
		c.tcpPackets++
		if src == 80 || dst == 80 {
			c.httpPackets++
		}
		if src == 443 || dst == 443 {
			c.httpsPackets++
		}
	case model.ProtoUDP:
		c.udpPackets++
		if src == 53 || dst == 53 {
			c.dnsPackets++
		}
		if src == 67 || dst == 67 || src == 68 || dst == 68 {
			c.dhcpPackets++
		}
	case model.ProtoICMP:
		c.icmpPackets++
	}
}

// Snapshot returns the window's counters stamped with the flush time and
// resets them for the next window.
func (c *Collector) Snapshot() model.StatsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := model.StatsSnapshot{
		TotalPackets: c.totalPackets,
		TCPPackets:   c.tcpPackets,
		UDPPackets:   c.udpPackets,
		ICMPPackets:  c.icmpPackets,
		HTTPPackets:  c.httpPackets,
		HTTPSPackets: c.httpsPackets,
		DNSPackets:   c.dnsPackets,
		DHCPPackets:  c.dhcpPackets,
		CreatedAt:    timeNow(),
	}
	c.totalPackets, c.tcpPackets, c.udpPackets, c.icmpPackets = 0, 0, 0, 0
	c.httpPackets, c.httpsPackets, c.dnsPackets, c.dhcpPackets = 0, 0, 0, 0
	return snap
}
