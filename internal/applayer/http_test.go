package applayer

import "testing"

func TestParseHTTP_Request(t *testing.T) {
	payload := []byte("GET /search?q=test HTTP/1.1\r\nHost: example.com\r\nUser-Agent: curl/8.0\r\nAccept: */*\r\n\r\n")
	info := ParseHTTP(payload)
	if info == nil {
		t.Fatal("Expected a parsed request")
	}
	if info.Type != "request" {
		t.Errorf("Unexpected type %q", info.Type)
	}
	if info.Method != "GET" || info.URI != "/search?q=test" {
		t.Errorf("Unexpected request line fields: %s %s", info.Method, info.URI)
	}
	if info.ReqLine != "GET /search?q=test HTTP/1.1" {
		t.Errorf("Unexpected req line: %q", info.ReqLine)
	}
	if info.Host != "example.com" || info.UserAgent != "curl/8.0" {
		t.Errorf("Header extraction failed: host=%q ua=%q", info.Host, info.UserAgent)
	}
}

func TestParseHTTP_CaseInsensitiveHeaders(t *testing.T) {
	payload := []byte("POST /login HTTP/1.1\r\nHOST: h\r\nuser-agent: bot\r\n\r\nusername=x")
	info := ParseHTTP(payload)
	if info == nil {
		t.Fatal("Expected a parsed request")
	}
	if info.Host != "h" || info.UserAgent != "bot" {
		t.Errorf("Headers must match case-insensitively: host=%q ua=%q", info.Host, info.UserAgent)
	}
}

func TestParseHTTP_HeadersStopAtBlankLine(t *testing.T) {
	payload := []byte("GET / HTTP/1.1\r\nHost: real\r\n\r\nHost: fake-in-body")
	info := ParseHTTP(payload)
	if info == nil {
		t.Fatal("Expected a parsed request")
	}
	if info.Host != "real" {
		t.Errorf("Body content leaked into headers: %q", info.Host)
	}
}

func TestParseHTTP_NonRequests(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("HTTP/1.1 200 OK\r\nServer: nginx\r\n\r\n"), // responses are not parsed
		[]byte("\x16\x03\x01\x02\x00"),                     // TLS client hello
		[]byte("GETTING started"),                          // method must be a full token
	}
	for _, payload := range cases {
		if info := ParseHTTP(payload); info != nil {
			t.Errorf("Expected nil for %q, got %+v", payload, info)
		}
	}
}

func TestParseHTTP_TruncatedRequestLine(t *testing.T) {
	if info := ParseHTTP([]byte("GET \r\n")); info != nil {
		t.Errorf("Request line without URI should not parse, got %+v", info)
	}
}
