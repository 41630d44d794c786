package packet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestInfoCookieRoundTrip(t *testing.T) {
	in := NewInfo(2, 5, 512, "css_grid", FlagZstd)
	in.ExpectedReturn = 4096

	value, err := in.CookieValue()
	if err != nil {
		t.Fatalf("CookieValue: %v", err)
	}
	if strings.ContainsAny(value, ";= ") {
		t.Errorf("cookie value %q is not cookie safe", value)
	}

	out, err := ParseCookieValue(value)
	if err != nil {
		t.Fatalf("ParseCookieValue: %v", err)
	}
	if *out != *in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestParseCookieValueRejects(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not base64", "!!!"},
		{"not cbor", "aGVsbG8gd29ybGQ"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCookieValue(tt.value); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestParseCookieValueRejectsInconsistentTags(t *testing.T) {
	tests := []struct {
		name string
		info *Info
	}{
		{"index out of range", &Info{Version: Version, Index: 3, Total: 3, Length: 1}},
		{"zero total", &Info{Version: Version, Index: 0, Total: 0}},
		{"newer version", &Info{Version: Version + 1, Index: 0, Total: 1}},
		{"negative length", &Info{Version: Version, Index: 0, Total: 1, Length: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.info.CookieValue()
			if err != nil {
				t.Fatalf("CookieValue: %v", err)
			}
			if _, err := ParseCookieValue(value); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestBuildRequestShape(t *testing.T) {
	body := []byte(`{"type":"metadata"}`)
	info := NewInfo(0, 1, 7, "json_metadata", 0)

	pkt, err := BuildRequest(body, "application/json", info)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if err := Validate(pkt); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if IsResponse(pkt) {
		t.Error("request packet classified as response")
	}
	if !bytes.HasPrefix(pkt, []byte("POST ")) {
		t.Errorf("first bytes: %q", pkt[:16])
	}

	header, gotBody, err := Split(pkt)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !bytes.Equal(gotBody, body) {
		t.Errorf("body mismatch: %q", gotBody)
	}
	if ct := ContentType(header); ct != "application/json" {
		t.Errorf("Content-Type: %q", ct)
	}
	if hv := HeaderValue(header, "content-length"); hv != "19" {
		t.Errorf("Content-Length: %q", hv)
	}

	got, err := ExtractInfo(header)
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if got.Technique != "json_metadata" || got.Length != 7 {
		t.Errorf("tag mismatch: %+v", got)
	}
}

func TestBuildResponseShape(t *testing.T) {
	body := []byte("<!DOCTYPE html>\n<html></html>")
	info := NewInfo(1, 3, 20, "html_comment", 0)

	pkt, err := BuildResponse(body, "text/html", info)
	if err != nil {
		t.Fatalf("BuildResponse: %v", err)
	}

	if err := Validate(pkt); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !IsResponse(pkt) {
		t.Error("response packet classified as request")
	}

	header, _, err := Split(pkt)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if HeaderValue(header, "Set-Cookie") == "" {
		t.Error("missing Set-Cookie header")
	}

	got, err := ExtractInfo(header)
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if got.Index != 1 || got.Total != 3 || got.Technique != "html_comment" {
		t.Errorf("tag mismatch: %+v", got)
	}
}

func TestExtractInfoSkipsDecoys(t *testing.T) {
	info := NewInfo(0, 1, 4, "xml_rss", 0)
	value, err := info.CookieValue()
	if err != nil {
		t.Fatal(err)
	}

	header := "POST /upload HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Cookie: theme=dark; sessionId=" + value + "; _ga=GA1.2.1.2"
	got, err := ExtractInfo(header)
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if got.Technique != "xml_rss" {
		t.Errorf("technique: %q", got.Technique)
	}

	noTag := "POST /upload HTTP/1.1\r\n" +
		"Cookie: theme=dark; sessionId=f81d4fae-7dec-11d0-a765-00a0c91e6bf6"
	if _, err := ExtractInfo(noTag); !errors.Is(err, ErrMissingTag) {
		t.Errorf("want ErrMissingTag, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"request", "POST /x HTTP/1.1\r\nHost: a\r\n\r\n", false},
		{"get request", "GET /x HTTP/1.1\r\nHost: a\r\n\r\n", false},
		{"response", "HTTP/1.1 200 OK\r\nServer: a\r\n\r\n", false},
		{"too short", "POST /", true},
		{"no crlf", "POST /something HTTP/1.1 no line ending here at all", true},
		{"wrong method", "DELETE /x HTTP/1.1\r\nHost: a\r\n\r\n", true},
		{"garbage", "this is not http at all\r\n\r\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPacket) {
				t.Errorf("error not wrapped in ErrInvalidPacket: %v", err)
			}
		})
	}
}

func TestSplitMissingTerminator(t *testing.T) {
	if _, _, err := Split([]byte("POST /x HTTP/1.1\r\nHost: a\r\n")); !errors.Is(err, ErrInvalidPacket) {
		t.Errorf("want ErrInvalidPacket, got %v", err)
	}
}

func TestAddPadding(t *testing.T) {
	pkt := []byte("POST /x HTTP/1.1\r\nHost: a\r\n\r\nbody")

	padded := AddPadding(pkt, 40)
	if len(padded) != len(pkt)+40 {
		t.Errorf("padded length %d, want %d", len(padded), len(pkt)+40)
	}
	if err := Validate(padded); err != nil {
		t.Errorf("padded packet invalid: %v", err)
	}
	header, body, err := Split(padded)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !bytes.Equal(body, []byte("body")) {
		t.Errorf("body changed: %q", body)
	}
	if HeaderValue(header, "X-Padding") == "" {
		t.Error("missing X-Padding header")
	}

	// Too small to hold the header syntax: unchanged.
	if got := AddPadding(pkt, 5); !bytes.Equal(got, pkt) {
		t.Errorf("small padding changed packet")
	}
}
