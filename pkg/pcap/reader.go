// Package pcap reads capture files for offline analysis.
package pcap

import (
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"NetSentra/internal/capture"
	"NetSentra/internal/model"
)

// Reader reads packets from a pcap file.
type Reader struct {
	handle *pcap.Handle
}

// NewReader opens a pcap file for reading.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", filePath, err)
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadPackets decodes every packet in the file onto out and closes the
// channel when done. Undecodable frames are counted and skipped.
func (r *Reader) ReadPackets(out chan<- *model.PacketInfo) {
	defer close(out)

	skipped := 0
	src := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range src.Packets() {
		info, err := capture.Decode(packet)
		if err != nil {
			skipped++
			continue
		}
		out <- info
	}
	if skipped > 0 {
		log.Printf("[Pcap] %d frame(s) skipped on decode errors", skipped)
	}
}
