package risk

import (
	"testing"

	"NetSentra/internal/model"
)

func TestWindowsTelnetHost(t *testing.T) {
	a := Calculate([]int{23, 445}, []string{"telnet", "http"}, "Windows", "Unknown")
	// 20 (23) + 20 (445) + 30 (telnet) + 10 (http no https) + 10 (Windows+445) + 5 (unknown vendor)
	if a.Score != 95 {
		t.Errorf("Score = %d, want 95", a.Score)
	}
	if a.Level != model.SeverityHigh {
		t.Errorf("Level = %s, want High", a.Level)
	}
	if len(a.Reasons) != 6 {
		t.Errorf("Expected 6 reasons, got %d: %v", len(a.Reasons), a.Reasons)
	}
}

func TestCleanHost(t *testing.T) {
	a := Calculate([]int{443}, []string{"https"}, "Linux", "Apple, Inc.")
	if a.Score != 0 || a.Level != model.SeverityLow {
		t.Errorf("Clean host scored %d/%s", a.Score, a.Level)
	}
	if len(a.Reasons) != 0 {
		t.Errorf("Clean host must carry no reasons: %v", a.Reasons)
	}
}

func TestHTTPWithHTTPSNotPenalized(t *testing.T) {
	a := Calculate(nil, []string{"http", "https"}, "Linux", "Vendor")
	if a.Score != 0 {
		t.Errorf("HTTP alongside HTTPS must not score, got %d", a.Score)
	}
}

func TestMediumBand(t *testing.T) {
	// 20 (21) + 20 (3389) + 5 (unknown vendor) = 45
	a := Calculate([]int{21, 3389}, nil, "Unknown", "")
	if a.Score != 45 || a.Level != model.SeverityMedium {
		t.Errorf("Score/level = %d/%s, want 45/Medium", a.Score, a.Level)
	}
}

func TestScoreCap(t *testing.T) {
	a := Calculate([]int{21, 23, 445, 3389}, []string{"telnet", "http"}, "Windows", "")
	if a.Score != 100 {
		t.Errorf("Score must cap at 100, got %d", a.Score)
	}
	if a.Level != model.SeverityHigh {
		t.Errorf("Level = %s, want High", a.Level)
	}
}
