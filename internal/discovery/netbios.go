package discovery

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// NetBIOS Node Status (NBSTAT) over UDP/137. The wire format is DNS-shaped
// but uses first-level name encoding and an NBSTAT record type that regular
// DNS libraries do not model, so the datagram is built by hand.

const (
	nbstatPort  = 137
	nbstatType  = 0x0021
	nbstatClass = 0x0001
)

// encodeNetBIOSName applies first-level encoding: each half-octet of the
// space-padded 16-byte name becomes a letter in 'A'..'P'.
func encodeNetBIOSName(name string) []byte {
	padded := make([]byte, 16)
	copy(padded, name)
	for i := len(name); i < 16; i++ {
		padded[i] = ' '
	}
	// The wildcard query uses NUL padding, not spaces.
	if name == "*" {
		for i := 1; i < 16; i++ {
			padded[i] = 0
		}
	}
	out := make([]byte, 0, 34)
	out = append(out, 0x20) // encoded length
	for _, b := range padded {
		out = append(out, 'A'+(b>>4), 'A'+(b&0x0f))
	}
	out = append(out, 0x00) // root label
	return out
}

// buildNodeStatusQuery builds the wildcard NBSTAT query datagram.
func buildNodeStatusQuery(txid uint16) []byte {
	msg := make([]byte, 0, 50)
	msg = append(msg,
		byte(txid>>8), byte(txid), // transaction id
		0x00, 0x10, // flags: broadcast
		0x00, 0x01, // one question
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // no answer/authority/additional
	)
	msg = append(msg, encodeNetBIOSName("*")...)
	msg = append(msg, byte(nbstatType>>8), byte(nbstatType), byte(nbstatClass>>8), byte(nbstatClass))
	return msg
}

// parseNodeStatusResponse extracts the first unique (non-group) name from an
// NBSTAT answer. Returns "" when the datagram does not contain one.
func parseNodeStatusResponse(data []byte) string {
	// Header (12) + encoded name (34) + type/class/ttl/rdlength (10), then a
	// one-byte name count followed by 18-byte name entries.
	const namesOffset = 12 + 34 + 10
	if len(data) < namesOffset+1 {
		return ""
	}
	count := int(data[namesOffset])
	entry := namesOffset + 1
	for i := 0; i < count; i++ {
		if entry+18 > len(data) {
			break
		}
		name := strings.TrimRight(string(data[entry:entry+15]), " \x00")
		suffix := data[entry+15]
		flags := uint16(data[entry+16])<<8 | uint16(data[entry+17])
		entry += 18

		// Group names (flag bit 15) and service suffixes are skipped; the
		// workstation name carries suffix 0x00.
		if flags&0x8000 != 0 || suffix != 0x00 {
			continue
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// queryNetBIOS asks ip for its node status and returns the unique host name.
func queryNetBIOS(ip string, timeout time.Duration) string {
	conn, err := net.DialTimeout("udp", fmt.Sprintf("%s:%d", ip, nbstatPort), timeout)
	if err != nil {
		return ""
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(buildNodeStatusQuery(0x1a2b)); err != nil {
		return ""
	}
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return ""
	}
	return parseNodeStatusResponse(buf[:n])
}
