package packet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPacket means the byte stream is not an HTTP/1.1
	// request or response.
	ErrInvalidPacket = errors.New("invalid HTTP packet")

	// ErrMissingTag means no cookie carried a parseable packet tag.
	ErrMissingTag = errors.New("no packet tag found")
)

// findCRLFCRLF locates the end of the header block.
func findCRLFCRLF(data []byte) int {
	return bytes.Index(data, []byte("\r\n\r\n"))
}

// IsResponse reports whether the packet is response-shaped.
func IsResponse(data []byte) bool {
	return bytes.HasPrefix(data, []byte("HTTP/"))
}

// Validate checks that the packet has a plausible HTTP/1.1 shape.
func Validate(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("%w: too short", ErrInvalidPacket)
	}
	end := bytes.Index(data, []byte("\r\n"))
	if end < 0 {
		return fmt.Errorf("%w: no request/status line", ErrInvalidPacket)
	}
	first := string(data[:end])

	if strings.HasPrefix(first, "HTTP/") && strings.Contains(first, " ") {
		return nil
	}
	fields := strings.Fields(first)
	if len(fields) == 3 && strings.HasPrefix(fields[2], "HTTP/") &&
		(fields[0] == "GET" || fields[0] == "POST") {
		return nil
	}
	return fmt.Errorf("%w: malformed first line %q", ErrInvalidPacket, first)
}

// Split separates the header block from the body.
func Split(data []byte) (string, []byte, error) {
	pos := findCRLFCRLF(data)
	if pos < 0 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrInvalidPacket)
	}
	return string(data[:pos]), data[pos+4:], nil
}

// HeaderValue returns the value of the first header with the given
// name, case-insensitively, or "" if absent.
func HeaderValue(header, name string) string {
	prefix := strings.ToLower(name) + ":"
	for _, line := range strings.Split(header, "\r\n")[1:] {
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

// ContentType returns the packet's Content-Type without parameters.
func ContentType(header string) string {
	ct := HeaderValue(header, "Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// ExtractInfo scans Cookie and Set-Cookie headers for the packet tag.
// Decoy cookies fail tag parsing and are skipped.
func ExtractInfo(header string) (*Info, error) {
	for _, line := range strings.Split(header, "\r\n")[1:] {
		lower := strings.ToLower(line)
		var raw string
		switch {
		case strings.HasPrefix(lower, "cookie:"):
			raw = line[len("cookie:"):]
		case strings.HasPrefix(lower, "set-cookie:"):
			raw = line[len("set-cookie:"):]
		default:
			continue
		}
		for _, cookie := range strings.Split(raw, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(cookie), "=")
			if !ok {
				continue
			}
			if !isTagCookieName(name) {
				continue
			}
			if info, err := ParseCookieValue(strings.TrimSpace(value)); err == nil {
				return info, nil
			}
		}
	}
	return nil, ErrMissingTag
}

func isTagCookieName(name string) bool {
	for _, known := range cookieNames {
		if name == known {
			return true
		}
	}
	return false
}
