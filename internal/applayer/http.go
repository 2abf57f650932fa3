// Package applayer extracts HTTP and DNS metadata from packet payloads and
// attaches it to the packet record for the rule matcher.
package applayer

import (
	"strings"

	"NetSentra/internal/model"
)

var httpMethods = []string{"GET ", "POST ", "PUT ", "DELETE ", "HEAD ", "OPTIONS ", "PATCH "}

// ParseHTTP parses an HTTP request out of a TCP payload. Payloads that do
// not start with a known method return nil; responses are not parsed in
// this version.
func ParseHTTP(payload []byte) *model.HTTPInfo {
	if len(payload) == 0 {
		return nil
	}
	text := string(payload)

	matched := false
	for _, m := range httpMethods {
		if strings.HasPrefix(text, m) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	lines := strings.Split(text, "\r\n")
	reqLine := lines[0]
	parts := strings.Split(reqLine, " ")
	if len(parts) < 2 {
		return nil
	}

	info := &model.HTTPInfo{
		Type:    "request",
		ReqLine: strings.TrimSpace(reqLine),
		Method:  parts[0],
		URI:     parts[1],
	}

	// Headers run until the first blank line or the end of the payload.
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "host":
			info.Host = val
		case "user-agent":
			info.UserAgent = val
		}
	}
	return info
}
