package applayer

import (
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"NetSentra/internal/model"
)

// ParseDNS parses a DNS query out of a UDP payload. Responses (qr=1) and
// messages without a question are ignored; undecodable payloads return nil.
func ParseDNS(payload []byte) *model.DNSInfo {
	if len(payload) == 0 {
		return nil
	}

	var msg layers.DNS
	if err := msg.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		return nil
	}
	if msg.QR || len(msg.Questions) == 0 {
		return nil
	}

	q := msg.Questions[0]
	return &model.DNSInfo{
		Type:  "query",
		QName: strings.ToValidUTF8(string(q.Name), "�"),
		QType: uint16(q.Type),
	}
}
