package rules

import (
	"strconv"
	"strings"

	"NetSentra/internal/flow"
	"NetSentra/internal/model"
)

// Match is the result of a successful rule evaluation.
type Match struct {
	Rule      *Rule
	SID       int
	Msg       string
	Classtype string
}

// Matcher evaluates a compiled rule set in insertion order. The rule set is
// loaded once at startup and never mutated, so the matcher needs no locking.
type Matcher struct {
	rules []*Rule
}

// NewMatcher wraps a compiled rule set.
func NewMatcher(rules []*Rule) *Matcher {
	return &Matcher{rules: rules}
}

// Rules returns the underlying rule set.
func (m *Matcher) Rules() []*Rule {
	return m.rules
}

// Match evaluates the rule set against one packet; the first matching rule
// wins. flowState is the tracker state for the packet's flow, or nil when
// the flow is unknown.
func (m *Matcher) Match(pkt *model.PacketInfo, flowState *flow.State) *Match {
	for _, rule := range m.rules {
		if ruleMatches(rule, pkt, flowState) {
			return &Match{
				Rule:      rule,
				SID:       rule.SID,
				Msg:       rule.Msg,
				Classtype: rule.Classtype,
			}
		}
	}
	return nil
}

func ruleMatches(rule *Rule, pkt *model.PacketInfo, flowState *flow.State) bool {
	if !protocolMatches(rule.Protocol, pkt) {
		return false
	}
	if !addrMatches(rule.SrcIP, pkt.FiveTuple.SrcIP.String()) ||
		!addrMatches(rule.DstIP, pkt.FiveTuple.DstIP.String()) {
		return false
	}
	if !portMatches(rule.SrcPort, pkt.FiveTuple.SrcPort) ||
		!portMatches(rule.DstPort, pkt.FiveTuple.DstPort) {
		return false
	}
	if !flowMatches(rule.Flow, flowState) {
		return false
	}
	if !contentMatches(rule, pkt) {
		return false
	}
	if !httpMatches(rule, pkt) {
		return false
	}
	return true
}

func protocolMatches(proto string, pkt *model.PacketInfo) bool {
	switch proto {
	case "any", "ip":
		return true
	case "tcp":
		return pkt.FiveTuple.Protocol == model.ProtoTCP
	case "udp":
		return pkt.FiveTuple.Protocol == model.ProtoUDP
	case "icmp":
		return pkt.FiveTuple.Protocol == model.ProtoICMP
	case "http":
		return pkt.HTTP != nil
	case "dns":
		return pkt.DNS != nil
	default:
		return false
	}
}

func addrMatches(want, got string) bool {
	return want == "any" || want == got
}

func portMatches(want string, got uint16) bool {
	return want == "any" || want == strconv.Itoa(int(got))
}

// flowMatches enforces flow options. Only "established" gates matching in
// this version; other tokens are accepted and ignored.
func flowMatches(tokens []string, flowState *flow.State) bool {
	for _, tok := range tokens {
		if tok == "established" {
			if flowState == nil || flowState.State != flow.StateEstablished {
				return false
			}
		}
	}
	return true
}

func contentMatches(rule *Rule, pkt *model.PacketInfo) bool {
	if rule.Content == "" {
		return true
	}
	if len(pkt.Payload) == 0 {
		return false
	}
	payload := string(pkt.Payload)
	if rule.Nocase {
		return strings.Contains(strings.ToLower(payload), strings.ToLower(rule.Content))
	}
	return strings.Contains(payload, rule.Content)
}

func httpMatches(rule *Rule, pkt *model.PacketInfo) bool {
	method, hasMethod := rule.Option("http.method")
	uri, hasURI := rule.Option("http.uri")
	if !hasMethod && !hasURI {
		return true
	}
	if pkt.HTTP == nil {
		return false
	}
	if hasMethod && pkt.HTTP.Method != method {
		return false
	}
	if hasURI && !strings.Contains(pkt.HTTP.URI, uri) {
		return false
	}
	return true
}
