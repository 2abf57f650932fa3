package discovery

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// commonPorts are the services worth probing on a LAN host.
var commonPorts = []int{21, 22, 23, 25, 53, 80, 110, 135, 139, 443, 445, 3306, 3389, 5432, 8000, 8080}

var serviceNames = map[int]string{
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	135:  "msrpc",
	139:  "netbios-ssn",
	443:  "https",
	445:  "smb",
	3306: "mysql",
	3389: "rdp",
	5432: "postgresql",
	8000: "http-alt",
	8080: "http-proxy",
}

const (
	connectTimeout = 500 * time.Millisecond
	bannerTimeout  = 1 * time.Second
)

// PortResult is one open port with whatever the service volunteered.
type PortResult struct {
	Port    int
	Service string
	Banner  string
}

// ServiceName names a port, falling back to "unknown".
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "unknown"
}

// ScanPorts connect-scans the common ports of ip and grabs a banner from
// each open one. Ports are probed serially; host-level parallelism is the
// orchestrator's job.
func ScanPorts(ip string) []PortResult {
	return scanPorts(ip, commonPorts)
}

func scanPorts(ip string, ports []int) []PortResult {
	var results []PortResult
	for _, port := range ports {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", ip, port), connectTimeout)
		if err != nil {
			continue
		}
		banner := grabBanner(conn, port)
		conn.Close()
		results = append(results, PortResult{Port: port, Service: ServiceName(port), Banner: banner})
	}
	return results
}

// grabBanner reads whatever the service sends first. HTTP servers say
// nothing unsolicited, so ports 80/8000/8080 get a HEAD request and the
// Server header is extracted from the response.
func grabBanner(conn net.Conn, port int) string {
	conn.SetDeadline(time.Now().Add(bannerTimeout))

	httpPort := port == 80 || port == 8000 || port == 8080
	if httpPort {
		fmt.Fprintf(conn, "HEAD / HTTP/1.0\r\nHost: %s\r\n\r\n", conn.RemoteAddr())
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}
	banner := string(buf[:n])
	if httpPort {
		if server := httpServerHeader(banner); server != "" {
			return server
		}
	}
	line, _, _ := strings.Cut(banner, "\n")
	return strings.TrimSpace(line)
}

func httpServerHeader(response string) string {
	for _, line := range strings.Split(response, "\r\n") {
		key, val, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(key, "Server") {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// InferOS guesses the OS family from the open port set: SMB means Windows,
// SSH without SMB means Linux.
func InferOS(openPorts []int) string {
	hasSSH, hasSMB := false, false
	for _, p := range openPorts {
		switch p {
		case 22:
			hasSSH = true
		case 445:
			hasSMB = true
		}
	}
	switch {
	case hasSMB:
		return "Windows"
	case hasSSH:
		return "Linux"
	default:
		return "Unknown"
	}
}

// InferProtocols lists the notable protocols behind the open port set.
func InferProtocols(openPorts []int) []string {
	var protocols []string
	for _, p := range openPorts {
		switch p {
		case 80:
			protocols = append(protocols, "http")
		case 443:
			protocols = append(protocols, "https")
		case 22:
			protocols = append(protocols, "ssh")
		case 23:
			protocols = append(protocols, "telnet")
		case 445:
			protocols = append(protocols, "smb")
		}
	}
	return protocols
}
