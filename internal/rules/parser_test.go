package rules

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseRule_Basic(t *testing.T) {
	line := `alert http any any -> any any (msg:"Possible SQL Injection"; content:"UNION SELECT"; sid:1000001; rev:1;)`
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}
	if rule.Action != "alert" || rule.Protocol != "http" {
		t.Errorf("Unexpected header: %s %s", rule.Action, rule.Protocol)
	}
	if rule.SrcIP != "any" || rule.SrcPort != "any" || rule.DstIP != "any" || rule.DstPort != "any" {
		t.Errorf("Unexpected addresses: %+v", rule)
	}
	if rule.Direction != "->" {
		t.Errorf("Unexpected direction %q", rule.Direction)
	}
	if rule.Msg != "Possible SQL Injection" {
		t.Errorf("Quotes not stripped from msg: %q", rule.Msg)
	}
	if rule.Content != "UNION SELECT" {
		t.Errorf("Unexpected content: %q", rule.Content)
	}
	if rule.SID != 1000001 || rule.Rev != 1 {
		t.Errorf("Unexpected sid/rev: %d/%d", rule.SID, rule.Rev)
	}
}

func TestParseRule_FlagsAndUnknownOptions(t *testing.T) {
	line := `alert tcp 10.0.0.1 1234 <> any 80 (msg:"case test"; content:"admin"; nocase; fancy.option:kept; sid:7;)`
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}
	if !rule.Nocase {
		t.Error("nocase flag should be set")
	}
	if v, ok := rule.Option("fancy.option"); !ok || v != "kept" {
		t.Errorf("Unknown options must be retained, got %q/%v", v, ok)
	}
	if rule.Direction != "<>" {
		t.Errorf("Unexpected direction %q", rule.Direction)
	}
}

func TestParseRule_CommentsAndBlank(t *testing.T) {
	for _, line := range []string{"", "   ", "# alert tcp any any -> any any (sid:1;)"} {
		rule, err := ParseRule(line)
		if err != nil {
			t.Errorf("Comment/blank line should not error: %v", err)
		}
		if rule != nil {
			t.Errorf("Comment/blank line should yield no rule, got %+v", rule)
		}
	}
}

func TestParseRule_Errors(t *testing.T) {
	cases := []string{
		`alert tcp any any -> any (sid:1;)`,              // 6 header tokens
		`alert tcp any any -> any any sid:1`,             // no parentheses
		`alert tcp any any >> any any (sid:1;)`,          // bad direction
		`alert tcp any any -> any any (sid:x;)`,          // malformed sid
		`alert tcp any any -> any any (threshold:type bogus, count 1;)`, // bad threshold
	}
	for _, line := range cases {
		if _, err := ParseRule(line); err == nil {
			t.Errorf("Expected syntax error for %q", line)
		}
	}
}

func TestParseRule_ContentWithSemicolon(t *testing.T) {
	line := `alert tcp any any -> any any (msg:"semi"; content:"a;b"; sid:9;)`
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}
	if rule.Content != "a;b" {
		t.Errorf("Semicolon inside quotes must survive, got %q", rule.Content)
	}
}

func TestParseRule_ThresholdSpec(t *testing.T) {
	line := `alert tcp any any -> any any (msg:"t"; threshold:type limit, track by_dst, count 5, seconds 30; sid:42;)`
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}
	want := &ThresholdSpec{Type: "limit", Track: "by_dst", Count: 5, Seconds: 30}
	if !reflect.DeepEqual(rule.Threshold, want) {
		t.Errorf("Threshold = %+v, want %+v", rule.Threshold, want)
	}
}

func TestParseFile_SkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rules")
	content := `# test rules
alert tcp any any -> any any (msg:"one"; sid:1;)
this is not a rule at all
alert udp any any -> any 53 (msg:"two"; sid:2;)
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules (bad line skipped), got %d", len(rules))
	}
	if rules[0].SID != 1 || rules[1].SID != 2 {
		t.Errorf("Rules out of order: %d, %d", rules[0].SID, rules[1].SID)
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	lines := []string{
		`alert http any any -> any any (msg:"Possible SQL Injection"; content:"UNION SELECT"; sid:1000001; rev:1;)`,
		`alert tcp 192.168.1.5 any -> any 22 (msg:"ssh probe"; flow:established,to_server; nocase; sid:55;)`,
		`alert tcp any any -> any any (threshold:type limit, track by_src, count 1, seconds 60; sid:42;)`,
	}
	for _, line := range lines {
		first, err := ParseRule(line)
		if err != nil {
			t.Fatalf("ParseRule(%q) failed: %v", line, err)
		}
		second, err := ParseRule(first.Canonical())
		if err != nil {
			t.Fatalf("Canonical form did not re-parse: %v\n%s", err, first.Canonical())
		}
		// Raw differs by construction; everything else must be equal.
		first.Raw, second.Raw = "", ""
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", second, first)
		}
	}
}
