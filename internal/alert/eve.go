// Package alert turns detections into persisted Alert rows, EVE JSON on the
// message bus, and email notification for High severity.
package alert

import (
	"encoding/json"
	"time"

	"NetSentra/internal/model"
)

// placeholderSID identifies heuristic alerts that have no rule behind them.
const placeholderSID = 1000001

// eveAlert is the nested "alert" object of an EVE record.
type eveAlert struct {
	Action      string `json:"action"`
	GID         int    `json:"gid"`
	SignatureID int    `json:"signature_id"`
	Rev         int    `json:"rev"`
	Signature   string `json:"signature"`
	Category    string `json:"category"`
	Severity    int    `json:"severity"`
}

// eveRecord is one Suricata-compatible alert event.
type eveRecord struct {
	Timestamp string   `json:"timestamp"`
	EventType string   `json:"event_type"`
	SrcIP     string   `json:"src_ip"`
	DestIP    string   `json:"dest_ip"`
	Proto     string   `json:"proto"`
	Alert     eveAlert `json:"alert"`
}

func eveSeverity(severity string) int {
	switch severity {
	case model.SeverityHigh:
		return 1
	case model.SeverityMedium:
		return 2
	default:
		return 3
	}
}

// BuildEVE renders one alert as EVE JSON.
func BuildEVE(a *model.Alert) ([]byte, error) {
	sid := a.SID
	if sid == 0 {
		sid = placeholderSID
	}
	signature := a.Description
	if signature == "" {
		signature = a.AlertType
	}
	ts := a.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := eveRecord{
		Timestamp: ts.Format(time.RFC3339),
		EventType: "alert",
		SrcIP:     a.SourceIP,
		DestIP:    a.DestinationIP,
		Proto:     a.Protocol,
		Alert: eveAlert{
			Action:      "allowed",
			GID:         1,
			SignatureID: sid,
			Rev:         1,
			Signature:   signature,
			Category:    a.AlertType,
			Severity:    eveSeverity(a.Severity),
		},
	}
	return json.Marshal(rec)
}
