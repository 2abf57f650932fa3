package rules

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// SyntaxError describes one unparseable rule line. Rules with syntax errors
// are skipped; parsing never aborts a whole file.
type SyntaxError struct {
	Line   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rule syntax error: %s: %q", e.Reason, e.Line)
}

// ParseFile parses one rule per line from filePath, appending to dst and
// returning the combined slice. Offending lines are logged and skipped.
func ParseFile(filePath string, dst []*Rule) ([]*Rule, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return dst, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer f.Close()

	loaded := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rule, err := ParseRule(scanner.Text())
		if err != nil {
			log.Printf("Skipping rule in %s: %v", filePath, err)
			continue
		}
		if rule == nil {
			continue // comment or blank
		}
		dst = append(dst, rule)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return dst, fmt.Errorf("failed reading rule file: %w", err)
	}
	log.Printf("Loaded %d rules from %s", loaded, filePath)
	return dst, nil
}

// ParseRule compiles a single rule line. Comments and blank lines yield
// (nil, nil).
func ParseRule(line string) (*Rule, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	open := strings.Index(line, "(")
	if open < 0 || !strings.HasSuffix(line, ")") {
		return nil, &SyntaxError{Line: line, Reason: "missing option parentheses"}
	}
	headerStr := strings.TrimSpace(line[:open])
	optionsStr := strings.TrimSpace(line[open+1 : len(line)-1])

	parts := strings.Fields(headerStr)
	if len(parts) < 7 {
		return nil, &SyntaxError{Line: line, Reason: "header needs 7 tokens"}
	}

	rule := &Rule{
		Action:    parts[0],
		Protocol:  parts[1],
		SrcIP:     parts[2],
		SrcPort:   parts[3],
		Direction: parts[4],
		DstIP:     parts[5],
		DstPort:   parts[6],
		Options:   parseOptions(optionsStr),
		Raw:       line,
	}
	if rule.Direction != "->" && rule.Direction != "<>" {
		return nil, &SyntaxError{Line: line, Reason: "invalid direction"}
	}
	if err := rule.compileOptions(); err != nil {
		return nil, err
	}
	return rule, nil
}

// parseOptions splits the option body on semicolons outside double quotes.
func parseOptions(s string) []Option {
	var opts []Option
	for _, item := range splitOutsideQuotes(s, ';') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if key, val, ok := strings.Cut(item, ":"); ok {
			val = strings.TrimSpace(val)
			val = strings.Trim(val, "\"")
			opts = append(opts, Option{Key: strings.TrimSpace(key), Value: val})
		} else {
			opts = append(opts, Option{Key: item, Bare: true})
		}
	}
	return opts
}

func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == sep && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// compileOptions lifts recognized options into typed fields. Unknown options
// are retained and ignored by the matcher.
func (r *Rule) compileOptions() error {
	if v, ok := r.Option("msg"); ok {
		r.Msg = v
	}
	if v, ok := r.Option("sid"); ok {
		sid, err := strconv.Atoi(v)
		if err != nil {
			return &SyntaxError{Line: r.Raw, Reason: "invalid sid"}
		}
		r.SID = sid
	}
	if v, ok := r.Option("rev"); ok {
		if rev, err := strconv.Atoi(v); err == nil {
			r.Rev = rev
		}
	}
	if v, ok := r.Option("classtype"); ok {
		r.Classtype = v
	}
	if v, ok := r.Option("content"); ok {
		r.Content = v
	}
	r.Nocase = r.HasFlag("nocase")
	if v, ok := r.Option("flow"); ok {
		for _, tok := range strings.Split(v, ",") {
			r.Flow = append(r.Flow, strings.TrimSpace(tok))
		}
	}
	if v, ok := r.Option("threshold"); ok {
		spec, err := parseThresholdSpec(v)
		if err != nil {
			return &SyntaxError{Line: r.Raw, Reason: err.Error()}
		}
		r.Threshold = spec
	}
	return nil
}

// parseThresholdSpec parses "type limit, track by_src, count 1, seconds 60".
func parseThresholdSpec(s string) (*ThresholdSpec, error) {
	spec := &ThresholdSpec{Type: "limit", Track: "by_src", Count: 1, Seconds: 60}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, " ")
		if !ok {
			return nil, fmt.Errorf("malformed threshold element %q", part)
		}
		val = strings.TrimSpace(val)
		switch key {
		case "type":
			if val != "limit" && val != "threshold" {
				return nil, fmt.Errorf("unknown threshold type %q", val)
			}
			spec.Type = val
		case "track":
			if val != "by_src" && val != "by_dst" {
				return nil, fmt.Errorf("unknown threshold track %q", val)
			}
			spec.Track = val
		case "count":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid threshold count %q", val)
			}
			spec.Count = n
		case "seconds":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid threshold seconds %q", val)
			}
			spec.Seconds = n
		default:
			return nil, fmt.Errorf("unknown threshold element %q", key)
		}
	}
	return spec, nil
}
