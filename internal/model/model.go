package model

import (
	"fmt"
	"net"
	"time"
)

// FiveTuple identifies a flow by its addresses, ports and transport protocol.
// Direction is preserved: (a -> b) and (b -> a) are distinct tuples.
type FiveTuple struct {
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// TCPFlags carries the flag bits of a TCP segment.
type TCPFlags struct {
	SYN bool
	ACK bool
	FIN bool
	RST bool
	PSH bool
	URG bool
}

// HTTPInfo holds metadata extracted from an HTTP request payload.
type HTTPInfo struct {
	Type      string // "request"
	ReqLine   string
	Method    string
	URI       string
	Host      string
	UserAgent string
}

// DNSInfo holds metadata extracted from a DNS query.
type DNSInfo struct {
	Type  string // "query"
	QName string
	QType uint16
}

// PacketInfo is the decoded view over a single captured frame. It lives only
// for the duration of one pass through the pipeline. App-layer facts are
// attached as optional typed fields once the corresponding parser has run.
type PacketInfo struct {
	Timestamp time.Time
	FiveTuple FiveTuple
	Length    int
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	HasTCP    bool
	TCPFlags  TCPFlags
	Payload   []byte
	HTTP      *HTTPInfo
	DNS       *DNSInfo
}

// IP protocol numbers the engine cares about.
const (
	ProtoICMP uint8 = 1
	ProtoTCP  uint8 = 6
	ProtoUDP  uint8 = 17
)

// ProtoName returns the conventional name for an IP protocol number.
func ProtoName(proto uint8) string {
	switch proto {
	case ProtoTCP:
		return "TCP"
	case ProtoUDP:
		return "UDP"
	case ProtoICMP:
		return "ICMP"
	default:
		return fmt.Sprintf("IP(%d)", proto)
	}
}

// Alert severities as stored and served. Low doubles as "system/info" for
// non-security events.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// Alert is one detection event, rule-based or heuristic.
type Alert struct {
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip"`
	Protocol      string    `json:"protocol"`
	AlertType     string    `json:"alert_type"`
	Severity      string    `json:"severity"`
	Description   string    `json:"description"`
	SID           int       `json:"sid,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatsSnapshot is one flushed traffic-counter window.
type StatsSnapshot struct {
	TotalPackets uint64    `json:"total_packets"`
	TCPPackets   uint64    `json:"tcp_packets"`
	UDPPackets   uint64    `json:"udp_packets"`
	ICMPPackets  uint64    `json:"icmp_packets"`
	HTTPPackets  uint64    `json:"http_packets"`
	HTTPSPackets uint64    `json:"https_packets"`
	DNSPackets   uint64    `json:"dns_packets"`
	DHCPPackets  uint64    `json:"dhcp_packets"`
	CreatedAt    time.Time `json:"created_at"`
}

// SystemStatus reports whether the engine is running and on which interface.
type SystemStatus struct {
	Status             string    `json:"status"`
	MonitoredInterface string    `json:"monitored_interface"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Device is a profiled host on the local network, keyed by MAC address.
type Device struct {
	IP              string    `json:"ip_address"`
	MAC             string    `json:"mac_address"`
	Vendor          string    `json:"vendor"`
	Hostname        string    `json:"hostname"`
	OSFamily        string    `json:"os_family"`
	DeviceType      string    `json:"device_type"`
	OpenPorts       []string  `json:"open_ports"` // "port:service" entries
	Protocols       []string  `json:"protocols_detected"`
	RiskLevel       string    `json:"risk_level"`
	DiscoveryMethod string    `json:"discovery_method"`
	LastSeen        time.Time `json:"last_seen"`
}

// ScanResult is one immutable row of per-host scan history.
type ScanResult struct {
	IPAddress    string    `json:"ip_address"`
	Hostname     string    `json:"hostname"`
	MACAddress   string    `json:"mac_address"`
	Status       string    `json:"status"`
	OpenPorts    string    `json:"open_ports"` // comma-joined "port:service"
	OSDetails    string    `json:"os_details"`
	RiskLevel    string    `json:"risk_level"`
	ScanDuration float64   `json:"scan_duration"`
	CreatedAt    time.Time `json:"created_at"`
}
