// Package packet synthesizes and parses the HTTP/1.1 messages that
// carry encoded chunks, and the per-packet tag that makes decode
// deterministic.
package packet

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Version is the packet tag layout version. Decoders reject tags from a
// newer layout.
const Version = 1

// Flags carried in the packet tag.
const (
	// FlagZstd marks a payload that was zstd-compressed before
	// packetization. Reassembly must decompress the concatenation.
	FlagZstd uint8 = 1 << 0

	// FlagCover marks a cover packet whose chunk is random filler.
	// Receivers decode and discard it.
	FlagCover uint8 = 1 << 1
)

// Info is the per-packet tag. It travels base64-encoded inside a cookie
// value so a casual observer sees an opaque session token. Integer keys
// keep the CBOR encoding compact.
type Info struct {
	Version   uint8  `cbor:"1,keyasint"`
	Timestamp int64  `cbor:"2,keyasint"`
	Index     int    `cbor:"3,keyasint"`
	Total     int    `cbor:"4,keyasint"`
	Length    int    `cbor:"5,keyasint"`
	Flags     uint8  `cbor:"6,keyasint"`
	Technique string `cbor:"7,keyasint"`

	// ExpectedReturn advertises how many bytes the sender would like
	// the peer's next message to occupy, for traffic shaping.
	ExpectedReturn int `cbor:"8,keyasint,omitempty"`
}

// NewInfo builds a tag for one packet of a transmission.
func NewInfo(index, total, length int, technique string, flags uint8) *Info {
	return &Info{
		Version:   Version,
		Timestamp: time.Now().Unix(),
		Index:     index,
		Total:     total,
		Length:    length,
		Flags:     flags,
		Technique: technique,
	}
}

// CookieValue serializes the tag to a cookie-safe token.
func (in *Info) CookieValue() (string, error) {
	raw, err := cbor.Marshal(in)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ParseCookieValue deserializes a tag token. Values that are not a tag
// (ordinary cookies, tracking tokens) return an error and are skipped
// by the caller.
func ParseCookieValue(v string) (*Info, error) {
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil, err
	}
	var in Info
	if err := cbor.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	if in.Version == 0 || in.Version > Version {
		return nil, fmt.Errorf("unsupported packet tag version %d", in.Version)
	}
	if in.Total < 1 || in.Index < 0 || in.Index >= in.Total || in.Length < 0 {
		return nil, fmt.Errorf("inconsistent packet tag")
	}
	return &in, nil
}
