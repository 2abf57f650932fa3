package rules

import (
	"net"
	"testing"
	"time"

	"NetSentra/internal/flow"
	"NetSentra/internal/model"
)

func mustParse(t *testing.T, line string) *Rule {
	t.Helper()
	rule, err := ParseRule(line)
	if err != nil {
		t.Fatalf("ParseRule(%q) failed: %v", line, err)
	}
	return rule
}

func testPacket() *model.PacketInfo {
	return &model.PacketInfo{
		Timestamp: time.Now(),
		Length:    120,
		HasTCP:    true,
		FiveTuple: model.FiveTuple{
			SrcIP:    net.ParseIP("192.168.1.50"),
			DstIP:    net.ParseIP("10.0.0.80"),
			SrcPort:  51000,
			DstPort:  80,
			Protocol: model.ProtoTCP,
		},
	}
}

func TestMatch_HTTPContentRule(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert http any any -> any any (msg:"SQLi"; content:"UNION SELECT"; sid:1000001;)`),
	})

	pkt := testPacket()
	pkt.Payload = []byte("GET /x?q=UNION%20SELECT%20name FROM users HTTP/1.1\r\nHost: h\r\n\r\n")
	pkt.HTTP = &model.HTTPInfo{Type: "request", Method: "GET", URI: "/x?q=UNION%20SELECT%20name"}

	// Payload contains the encoded form only; raw content match needs the
	// literal substring.
	if m := matcher.Match(pkt, nil); m != nil {
		t.Fatal("Encoded payload should not match the literal content")
	}

	pkt.Payload = []byte("GET /x?q=UNION SELECT name FROM users HTTP/1.1\r\nHost: h\r\n\r\n")
	m := matcher.Match(pkt, nil)
	if m == nil {
		t.Fatal("Expected a match")
	}
	if m.SID != 1000001 || m.Msg != "SQLi" {
		t.Errorf("Unexpected match context: %+v", m)
	}
}

func TestMatch_HTTPProtocolRequiresFacts(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert http any any -> any any (msg:"h"; sid:1;)`),
	})
	pkt := testPacket()
	if matcher.Match(pkt, nil) != nil {
		t.Error("http rule must not match a packet without HTTP facts")
	}
	pkt.HTTP = &model.HTTPInfo{Type: "request", Method: "GET", URI: "/"}
	if matcher.Match(pkt, nil) == nil {
		t.Error("http rule should match once facts are attached")
	}
}

func TestMatch_AddressAndPortLiterals(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert tcp 192.168.1.50 any -> any 80 (msg:"lit"; sid:2;)`),
		mustParse(t, `alert tcp any any -> any 81 (msg:"wrong port"; sid:3;)`),
	})
	pkt := testPacket()
	m := matcher.Match(pkt, nil)
	if m == nil || m.SID != 2 {
		t.Fatalf("Expected sid 2 literal match, got %+v", m)
	}

	pkt.FiveTuple.SrcIP = net.ParseIP("192.168.1.51")
	if matcher.Match(pkt, nil) != nil {
		t.Error("Literal src_ip must not match another address")
	}
}

func TestMatch_FirstMatchWins(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert tcp any any -> any any (msg:"first"; sid:10;)`),
		mustParse(t, `alert tcp any any -> any 80 (msg:"second"; sid:11;)`),
	})
	m := matcher.Match(testPacket(), nil)
	if m == nil || m.SID != 10 {
		t.Errorf("First rule in insertion order must win, got %+v", m)
	}
}

func TestMatch_NocaseContent(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert tcp any any -> any any (msg:"nc"; content:"admin"; nocase; sid:20;)`),
	})
	pkt := testPacket()
	pkt.Payload = []byte("GET /ADMIN/login HTTP/1.1")
	if matcher.Match(pkt, nil) == nil {
		t.Error("nocase content should match case-insensitively")
	}

	// Without payload the content check must fail.
	pkt.Payload = nil
	if matcher.Match(pkt, nil) != nil {
		t.Error("Absent payload must fail a content rule")
	}
}

func TestMatch_FlowEstablishedGate(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert tcp any any -> any 80 (msg:"est only"; flow:established,to_server; sid:30;)`),
	})
	pkt := testPacket()

	if matcher.Match(pkt, nil) != nil {
		t.Error("Unknown flow must not satisfy flow:established")
	}
	if matcher.Match(pkt, &flow.State{State: flow.StateSynSent}) != nil {
		t.Error("syn_sent must not satisfy flow:established")
	}
	if matcher.Match(pkt, &flow.State{State: flow.StateEstablished}) == nil {
		t.Error("established flow should match")
	}
}

func TestMatch_HTTPMethodAndURI(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert http any any -> any any (msg:"post admin"; http.method:POST; http.uri:/admin; sid:40;)`),
	})
	pkt := testPacket()
	pkt.HTTP = &model.HTTPInfo{Type: "request", Method: "GET", URI: "/admin/panel"}
	if matcher.Match(pkt, nil) != nil {
		t.Error("http.method mismatch must fail")
	}
	pkt.HTTP.Method = "POST"
	if matcher.Match(pkt, nil) == nil {
		t.Error("POST /admin/panel should match")
	}
	pkt.HTTP.URI = "/login"
	if matcher.Match(pkt, nil) != nil {
		t.Error("http.uri substring mismatch must fail")
	}
}

func TestMatch_ICMPAndIPProtocols(t *testing.T) {
	matcher := NewMatcher([]*Rule{
		mustParse(t, `alert icmp any any -> any any (msg:"ping"; sid:50;)`),
	})
	pkt := testPacket()
	pkt.HasTCP = false
	pkt.FiveTuple.Protocol = model.ProtoICMP
	pkt.FiveTuple.SrcPort = 0
	pkt.FiveTuple.DstPort = 0
	m := matcher.Match(pkt, nil)
	if m == nil || m.SID != 50 {
		t.Errorf("ICMP rule should match, got %+v", m)
	}

	ipMatcher := NewMatcher([]*Rule{
		mustParse(t, `alert ip any any -> any any (msg:"anyip"; sid:51;)`),
	})
	if ipMatcher.Match(pkt, nil) == nil {
		t.Error("ip rule should match any IP packet")
	}
}
