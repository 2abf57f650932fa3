// Package risk scores a discovered host profile.
package risk

import (
	"fmt"
	"strings"

	"NetSentra/internal/model"
)

// riskyPorts each add a fixed amount to the score when open.
var riskyPorts = map[int]string{
	21:   "FTP",
	23:   "Telnet",
	445:  "SMB",
	3389: "RDP",
}

// Assessment is the outcome of scoring one host.
type Assessment struct {
	Score   int
	Level   string
	Reasons []string
}

// Calculate scores a host from its open ports, observed protocols, OS family
// and MAC vendor. The score is capped at 100; >=70 is High, >=40 Medium.
func Calculate(openPorts []int, protocols []string, osFamily, vendor string) Assessment {
	var a Assessment

	hasPort := make(map[int]bool, len(openPorts))
	for _, p := range openPorts {
		hasPort[p] = true
	}
	hasProto := make(map[string]bool, len(protocols))
	for _, p := range protocols {
		hasProto[strings.ToLower(p)] = true
	}

	for _, port := range []int{21, 23, 445, 3389} {
		if hasPort[port] {
			a.Score += 20
			a.Reasons = append(a.Reasons, fmt.Sprintf("Risky port %d (%s) open", port, riskyPorts[port]))
		}
	}
	if hasProto["http"] && !hasProto["https"] {
		a.Score += 10
		a.Reasons = append(a.Reasons, "HTTP served without HTTPS")
	}
	if hasProto["telnet"] {
		a.Score += 30
		a.Reasons = append(a.Reasons, "Telnet in use (cleartext credentials)")
	}
	if osFamily == "Windows" && hasPort[445] {
		a.Score += 10
		a.Reasons = append(a.Reasons, "Windows host exposing SMB")
	}
	if vendor == "" || strings.EqualFold(vendor, "unknown") {
		a.Score += 5
		a.Reasons = append(a.Reasons, "Unknown hardware vendor")
	}

	if a.Score > 100 {
		a.Score = 100
	}
	switch {
	case a.Score >= 70:
		a.Level = model.SeverityHigh
	case a.Score >= 40:
		a.Level = model.SeverityMedium
	default:
		a.Level = model.SeverityLow
	}
	return a
}
