package discovery

import "strings"

// ouiVendors maps the first three MAC octets to a vendor name. The table
// covers the prefixes most common on home and office networks; anything else
// reports as Unknown.
var ouiVendors = map[string]string{
	"00:03:93": "Apple, Inc.",
	"00:05:02": "Apple, Inc.",
	"00:1b:63": "Apple, Inc.",
	"3c:06:30": "Apple, Inc.",
	"a4:83:e7": "Apple, Inc.",
	"f0:18:98": "Apple, Inc.",
	"00:12:17": "Cisco-Linksys",
	"00:18:39": "Cisco-Linksys",
	"00:1a:70": "Cisco-Linksys",
	"00:40:96": "Cisco Systems",
	"00:1b:54": "Cisco Systems",
	"00:15:5d": "Microsoft Corporation",
	"00:03:ff": "Microsoft Corporation",
	"28:18:78": "Microsoft Corporation",
	"00:50:f2": "Microsoft Corporation",
	"00:1d:d8": "Microsoft Corporation",
	"3c:5a:b4": "Google, Inc.",
	"94:eb:2c": "Google, Inc.",
	"f4:f5:e8": "Google, Inc.",
	"18:b4:30": "Nest Labs Inc.",
	"00:17:88": "Philips Lighting",
	"00:24:e4": "Withings",
	"b0:be:76": "TP-Link Technologies",
	"50:c7:bf": "TP-Link Technologies",
	"ec:08:6b": "TP-Link Technologies",
	"c0:25:e9": "TP-Link Technologies",
	"04:18:d6": "Ubiquiti Networks",
	"24:a4:3c": "Ubiquiti Networks",
	"f0:9f:c2": "Ubiquiti Networks",
	"78:8a:20": "Ubiquiti Networks",
	"00:09:5b": "Netgear",
	"00:14:6c": "Netgear",
	"20:4e:7f": "Netgear",
	"a0:40:a0": "Netgear",
	"00:05:5d": "D-Link Corporation",
	"00:0f:3d": "D-Link Corporation",
	"14:d6:4d": "D-Link Corporation",
	"00:18:e7": "ASUSTek Computer",
	"00:1f:c6": "ASUSTek Computer",
	"2c:56:dc": "ASUSTek Computer",
	"00:23:54": "ASUSTek Computer",
	"b8:27:eb": "Raspberry Pi Foundation",
	"dc:a6:32": "Raspberry Pi Trading",
	"e4:5f:01": "Raspberry Pi Trading",
	"28:cd:c1": "Raspberry Pi Trading",
	"00:16:3e": "Xensource, Inc.",
	"52:54:00": "QEMU/KVM",
	"00:0c:29": "VMware, Inc.",
	"00:50:56": "VMware, Inc.",
	"00:1c:14": "VMware, Inc.",
	"08:00:27": "Oracle VirtualBox",
	"00:15:99": "Samsung Electronics",
	"00:21:19": "Samsung Electronics",
	"8c:77:12": "Samsung Electronics",
	"e8:50:8b": "Samsung Electronics",
	"fc:a6:21": "Samsung Electronics",
	"00:24:54": "Sony Corporation",
	"00:1d:ba": "Sony Corporation",
	"30:52:cb": "Liteon Technology",
	"74:e5:0b": "Intel Corporate",
	"a0:a8:cd": "Intel Corporate",
	"3c:f0:11": "Intel Corporate",
	"00:1b:77": "Intel Corporate",
	"f8:59:71": "Intel Corporate",
	"00:25:90": "Super Micro Computer",
	"ac:1f:6b": "Super Micro Computer",
	"00:14:22": "Dell Inc.",
	"00:21:9b": "Dell Inc.",
	"18:a9:9b": "Dell Inc.",
	"f8:b1:56": "Dell Inc.",
	"00:17:a4": "Hewlett Packard",
	"00:1f:29": "Hewlett Packard",
	"3c:d9:2b": "Hewlett Packard",
	"94:57:a5": "Hewlett Packard",
	"00:23:8b": "Quanta Computer",
	"40:b0:76": "ASRock Incorporation",
	"4c:cc:6a": "Micro-Star International",
	"00:d8:61": "Micro-Star International",
	"70:85:c2": "ASRock Incorporation",
	"ec:f4:bb": "Dell Inc.",
	"60:01:94": "Espressif Inc.",
	"24:0a:c4": "Espressif Inc.",
	"a4:cf:12": "Espressif Inc.",
	"84:f3:eb": "Espressif Inc.",
	"48:3f:da": "Espressif Inc.",
	"5c:cf:7f": "Espressif Inc.",
	"00:04:f2": "Polycom",
	"64:16:66": "Amazon Technologies",
	"ac:63:be": "Amazon Technologies",
	"fc:a1:83": "Amazon Technologies",
	"f0:27:2d": "Amazon Technologies",
	"74:c2:46": "Amazon Technologies",
	"18:74:2e": "Amazon Technologies",
	"00:fc:8b": "Amazon Technologies",
	"00:71:47": "Amazon Technologies",
	"38:f7:3d": "Amazon Technologies",
	"50:dc:e7": "Amazon Technologies",
	"68:37:e9": "Amazon Technologies",
	"78:e1:03": "Amazon Technologies",
	"b4:7c:9c": "Amazon Technologies",
	"00:24:d7": "Intel Corporate",
	"8c:a9:82": "Intel Corporate",
	"00:1e:65": "Intel Corporate",
	"34:13:e8": "Intel Corporate",
	"00:90:a9": "Western Digital",
	"00:1d:0f": "TP-Link Technologies",
	"bc:ae:c5": "ASUSTek Computer",
	"ac:9e:17": "ASUSTek Computer",
	"70:4d:7b": "ASUSTek Computer",
}

// LookupVendor resolves a MAC address to a hardware vendor by its OUI
// prefix. Unknown prefixes and malformed addresses return "Unknown".
func LookupVendor(mac string) string {
	mac = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(mac, "-", ":"), ".", ":"))
	if len(mac) < 8 {
		return "Unknown"
	}
	if vendor, ok := ouiVendors[mac[:8]]; ok {
		return vendor
	}
	return "Unknown"
}
