package capture

import (
	"errors"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"NetSentra/internal/model"
)

// ErrNotIP marks frames without an IPv4 layer. Callers count their bytes and
// otherwise drop them from pipeline consideration.
var ErrNotIP = errors.New("not an IPv4 packet")

// Decode turns a captured frame into the typed packet record. Decoding is
// tolerant: a malformed upper layer truncates the record instead of failing,
// so a bare IP packet still yields a usable record with ports left zero.
func Decode(packet gopacket.Packet) (*model.PacketInfo, error) {
	info := &model.PacketInfo{
		Timestamp: time.Now(),
		Length:    len(packet.Data()),
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		info.Timestamp = meta.Timestamp
	}

	if l := packet.Layer(layers.LayerTypeEthernet); l != nil {
		eth := l.(*layers.Ethernet)
		info.SrcMAC = eth.SrcMAC
		info.DstMAC = eth.DstMAC
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, ErrNotIP
	}
	ip := l.(*layers.IPv4)
	info.FiveTuple.SrcIP = ip.SrcIP
	info.FiveTuple.DstIP = ip.DstIP
	info.FiveTuple.Protocol = uint8(ip.Protocol)

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		info.FiveTuple.SrcPort = uint16(tcp.SrcPort)
		info.FiveTuple.DstPort = uint16(tcp.DstPort)
		info.HasTCP = true
		info.TCPFlags = model.TCPFlags{
			SYN: tcp.SYN, ACK: tcp.ACK, FIN: tcp.FIN,
			RST: tcp.RST, PSH: tcp.PSH, URG: tcp.URG,
		}
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		info.FiveTuple.SrcPort = uint16(udp.SrcPort)
		info.FiveTuple.DstPort = uint16(udp.DstPort)
	}

	if app := packet.ApplicationLayer(); app != nil {
		info.Payload = app.Payload()
	}

	return info, nil
}
