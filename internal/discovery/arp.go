package discovery

import (
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// arpReplyWindow is how long the sweep listens for replies after the last
// request goes out.
const arpReplyWindow = 2 * time.Second

// ARPSweep broadcasts a request for every address in network on ifaceName
// and collects replies for a short window. Returns ip -> MAC for every host
// that answered. Requires a device with an IPv4 address inside the network.
func ARPSweep(ifaceName string, network *net.IPNet) (map[string]string, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up interface %s: %w", ifaceName, err)
	}
	srcIP, err := interfaceIPv4(iface, network)
	if err != nil {
		return nil, err
	}

	handle, err := pcap.OpenLive(ifaceName, 128, false, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for ARP sweep: %w", ifaceName, err)
	}
	defer handle.Close()
	if err := handle.SetBPFFilter("arp"); err != nil {
		return nil, fmt.Errorf("failed to set ARP filter: %w", err)
	}

	for _, target := range HostsInNetwork(network) {
		frame, err := buildARPRequest(iface.HardwareAddr, srcIP, net.ParseIP(target).To4())
		if err != nil {
			return nil, err
		}
		if err := handle.WritePacketData(frame); err != nil {
			return nil, fmt.Errorf("failed to send ARP request: %w", err)
		}
	}

	return collectARPReplies(handle, srcIP), nil
}

func interfaceIPv4(iface *net.Interface, network *net.IPNet) (net.IP, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("failed to read addresses of %s: %w", iface.Name, err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 != nil && network.Contains(ip4) {
			return ip4, nil
		}
	}
	return nil, fmt.Errorf("interface %s has no IPv4 address in %s", iface.Name, network)
}

func buildARPRequest(srcMAC net.HardwareAddr, srcIP, dstIP net.IP) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcIP),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(dstIP),
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp); err != nil {
		return nil, fmt.Errorf("failed to serialize ARP request: %w", err)
	}
	return buf.Bytes(), nil
}

func collectARPReplies(handle *pcap.Handle, selfIP net.IP) map[string]string {
	found := make(map[string]string)
	src := gopacket.NewPacketSource(handle, handle.LinkType())
	deadline := time.After(arpReplyWindow)

	for {
		select {
		case pkt, ok := <-src.Packets():
			if !ok {
				return found
			}
			arpLayer := pkt.Layer(layers.LayerTypeARP)
			if arpLayer == nil {
				continue
			}
			arp := arpLayer.(*layers.ARP)
			if arp.Operation != layers.ARPReply {
				continue
			}
			ip := net.IP(arp.SourceProtAddress).String()
			if ip == selfIP.String() {
				continue
			}
			found[ip] = net.HardwareAddr(arp.SourceHwAddress).String()
		case <-deadline:
			return found
		}
	}
}

// HostsInNetwork expands a network to its usable host addresses, excluding
// the network and broadcast addresses.
func HostsInNetwork(network *net.IPNet) []string {
	var hosts []string
	ip := network.IP.Mask(network.Mask).To4()
	if ip == nil {
		return nil
	}
	cur := make(net.IP, 4)
	copy(cur, ip)
	for network.Contains(cur) {
		hosts = append(hosts, cur.String())
		for i := 3; i >= 0; i-- {
			cur[i]++
			if cur[i] != 0 {
				break
			}
		}
	}
	if len(hosts) <= 2 {
		return nil
	}
	return hosts[1 : len(hosts)-1]
}
