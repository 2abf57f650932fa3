// Package capture opens the live packet source and decodes raw frames into
// the engine's packet records.
package capture

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"NetSentra/internal/config"
)

// Source is a live pcap capture on one interface.
type Source struct {
	handle *pcap.Handle
	iface  string
}

// SelectInterface picks the capture interface. An explicit name wins;
// otherwise a real (non-virtual) Wi-Fi/Wireless adapter is preferred by
// description, then any wireless match, then the first device carrying a
// non-loopback address.
func SelectInterface(preferred string) (string, error) {
	if preferred != "" {
		return preferred, nil
	}

	devs, err := pcap.FindAllDevs()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	if len(devs) == 0 {
		return "", fmt.Errorf("no capture devices found")
	}

	for _, dev := range devs {
		if isWireless(dev) && !strings.Contains(dev.Description, "Virtual") {
			log.Printf("Automatically selected interface (Real): %s (%s)", dev.Name, dev.Description)
			return dev.Name, nil
		}
	}
	for _, dev := range devs {
		if isWireless(dev) {
			log.Printf("Automatically selected interface (Fallback): %s (%s)", dev.Name, dev.Description)
			return dev.Name, nil
		}
	}
	for _, dev := range devs {
		for _, addr := range dev.Addresses {
			if addr.IP != nil && !addr.IP.IsLoopback() {
				log.Printf("Automatically selected interface (Default): %s", dev.Name)
				return dev.Name, nil
			}
		}
	}
	return devs[0].Name, nil
}

func isWireless(dev pcap.Interface) bool {
	return strings.Contains(dev.Name, "Wi-Fi") ||
		strings.Contains(dev.Description, "Wi-Fi") ||
		strings.Contains(dev.Description, "Wireless")
}

// Open starts a live capture per the capture configuration.
func Open(cfg config.CaptureConfig) (*Source, error) {
	iface, err := SelectInterface(cfg.Interface)
	if err != nil {
		return nil, err
	}

	handle, err := pcap.OpenLive(iface, cfg.SnapshotLen, cfg.Promiscuous, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", iface, err)
	}
	log.Printf("Capture started on interface %s", iface)
	return &Source{handle: handle, iface: iface}, nil
}

// Interface returns the name of the captured interface.
func (s *Source) Interface() string {
	return s.iface
}

// Packets returns the stream of captured frames. The channel closes when the
// handle is closed.
func (s *Source) Packets() <-chan gopacket.Packet {
	src := gopacket.NewPacketSource(s.handle, s.handle.LinkType())
	return src.Packets()
}

// Close shuts the capture handle down, unblocking Packets.
func (s *Source) Close() {
	s.handle.Close()
}
