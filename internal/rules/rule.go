// Package rules compiles Suricata-style textual rules and evaluates them
// against decoded packets, flow state and app-layer facts.
package rules

import (
	"fmt"
	"strings"
)

// Rule actions. Only alert is materialized as an alert record; the other
// actions still participate in first-match evaluation.
const (
	ActionAlert  = "alert"
	ActionDrop   = "drop"
	ActionPass   = "pass"
	ActionReject = "reject"
)

// Option is one parsed rule option, in source order. Bare options such as
// nocase carry no value.
type Option struct {
	Key   string
	Value string
	Bare  bool
}

// ThresholdSpec is the compiled form of a threshold option.
type ThresholdSpec struct {
	Type    string // "limit" or "threshold"
	Track   string // "by_src" or "by_dst"
	Count   int
	Seconds int
}

// Rule is a compiled rule. Options are retained in order so the canonical
// form round-trips through the parser; frequently used options are also
// lifted into typed fields at compile time.
type Rule struct {
	Action    string
	Protocol  string
	SrcIP     string
	SrcPort   string
	Direction string
	DstIP     string
	DstPort   string
	Options   []Option

	SID       int
	Rev       int
	Msg       string
	Classtype string
	Content   string
	Nocase    bool
	Flow      []string // comma-split tokens of the flow option
	Threshold *ThresholdSpec

	Raw string
}

// Option returns the value of the first option named key.
func (r *Rule) Option(key string) (string, bool) {
	for _, opt := range r.Options {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

// HasFlag reports whether a bare option named key is present.
func (r *Rule) HasFlag(key string) bool {
	for _, opt := range r.Options {
		if opt.Key == key && opt.Bare {
			return true
		}
	}
	return false
}

// Canonical renders the rule in a form that parses back to an equal rule.
func (r *Rule) Canonical() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s %s %s %s (", r.Action, r.Protocol,
		r.SrcIP, r.SrcPort, r.Direction, r.DstIP, r.DstPort)
	for i, opt := range r.Options {
		if i > 0 {
			b.WriteByte(' ')
		}
		if opt.Bare {
			fmt.Fprintf(&b, "%s;", opt.Key)
		} else if needsQuotes(opt.Value) {
			fmt.Fprintf(&b, "%s:%q;", opt.Key, opt.Value)
		} else {
			fmt.Fprintf(&b, "%s:%s;", opt.Key, opt.Value)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func needsQuotes(v string) bool {
	return strings.ContainsAny(v, " ;:,")
}
