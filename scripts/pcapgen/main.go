// pcapgen writes a synthetic capture for exercising pcap-analyzer: a mix of
// plain web traffic, a SYN scan burst, an HTTP request carrying a SQL
// injection string and a DNS query.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xaa}
)

type writer struct {
	w  *pcapgo.Writer
	ts time.Time
}

func (pw *writer) tcp(src, dst net.IP, srcPort, dstPort layers.TCPPort, syn, ack bool, payload []byte) {
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP, SrcIP: src, DstIP: dst}
	tcp := &layers.TCP{
		SrcPort: srcPort, DstPort: dstPort,
		Seq: rand.Uint32(), SYN: syn, ACK: ack, Window: 14600,
	}
	tcp.SetNetworkLayerForChecksum(ip)
	pw.write(ip, tcp, payload)
}

func (pw *writer) udp(src, dst net.IP, srcPort, dstPort layers.UDPPort, payload []byte) {
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: src, DstIP: dst}
	udp := &layers.UDP{SrcPort: srcPort, DstPort: dstPort}
	udp.SetNetworkLayerForChecksum(ip)
	pw.write(ip, udp, payload)
}

func (pw *writer) write(ip *layers.IPv4, transport gopacket.SerializableLayer, payload []byte) {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}

	stack := []gopacket.SerializableLayer{eth, ip, transport}
	if len(payload) > 0 {
		stack = append(stack, gopacket.Payload(payload))
	}
	if err := gopacket.SerializeLayers(buf, opts, stack...); err != nil {
		log.Fatalf("Failed to serialize layers: %v", err)
	}

	pw.ts = pw.ts.Add(time.Millisecond)
	ci := gopacket.CaptureInfo{
		Timestamp:     pw.ts,
		CaptureLength: len(buf.Bytes()),
		Length:        len(buf.Bytes()),
	}
	if err := pw.w.WritePacket(ci, buf.Bytes()); err != nil {
		log.Fatalf("Failed to write packet: %v", err)
	}
}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	background := flag.Int("c", 200, "Number of background web packets")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}
	pw := &writer{w: w, ts: time.Now()}

	client := net.IP{192, 168, 1, 50}
	server := net.IP{192, 168, 1, 10}
	scanner := net.IP{192, 168, 1, 66}

	// Background web traffic on established-looking connections.
	for i := 0; i < *background; i++ {
		port := layers.TCPPort(40000 + rand.Intn(10000))
		pw.tcp(client, server, port, 80, false, true,
			[]byte(fmt.Sprintf("GET /page/%d HTTP/1.1\r\nHost: intranet\r\n\r\n", i)))
	}

	// A SYN scan: one source probing 30 ports without completing a handshake.
	for port := 1; port <= 30; port++ {
		pw.tcp(scanner, server, 55000, layers.TCPPort(port), true, false, nil)
	}

	// One SQL injection attempt.
	pw.tcp(client, server, 41000, 80, false, true,
		[]byte("GET /items?id=1 UNION SELECT username,password FROM users HTTP/1.1\r\nHost: intranet\r\n\r\n"))

	// One DNS query for the sinkhole test domain.
	dnsQuery := []byte{
		0xbe, 0xef, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0d, 's', 'i', 'n', 'k', 'h', 'o', 'l', 'e', '-', 't', 'e', 's', 't',
		0x03, 'c', 'o', 'm', 0x00,
		0x00, 0x01, 0x00, 0x01,
	}
	pw.udp(client, net.IP{8, 8, 8, 8}, 40053, 53, dnsQuery)

	log.Printf("Wrote capture to %s", *outputFile)
}
