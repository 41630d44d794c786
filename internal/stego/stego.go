package stego

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMIMEType means no registered codec serves the
	// requested MIME type for the given role.
	ErrUnsupportedMIMEType = errors.New("unsupported MIME type")

	// ErrUnknownTechnique means a packet tag named a technique that is
	// not in the local catalog (version skew between peers).
	ErrUnknownTechnique = errors.New("unknown carrier technique")

	// ErrCorruptPacket means the carrier body failed structural
	// validation of its host format during decode.
	ErrCorruptPacket = errors.New("corrupt carrier body")

	// ErrUndecodable means no sniffing candidate accepted the body.
	ErrUndecodable = errors.New("no codec could decode the carrier body")
)

// Role identifies which HTTP message shape carries the encoded body.
type Role int

const (
	// RoleClient encodes into request-shaped carriers.
	RoleClient Role = iota
	// RoleServer encodes into response-shaped carriers.
	RoleServer
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// Codec hides a chunk of bytes inside a syntactically valid document of
// one carrier format and recovers it exactly.
type Codec interface {
	// Name returns the technique identifier
	Name() string

	// MIMEType returns the Content-Type of the carrier output
	MIMEType() string

	// Capacity returns the maximum embeddable chunk size in bytes for
	// the given role, or 0 if the codec cannot serve that role
	Capacity(role Role) int

	// Encode embeds chunk into a carrier body. Panics if the chunk
	// exceeds Capacity: sizing is the packetizer's contract.
	Encode(chunk []byte) ([]byte, error)

	// Decode validates the carrier body and extracts the chunk.
	// Returns ErrCorruptPacket when the host format does not parse.
	Decode(body []byte) ([]byte, error)
}

// checkCapacity enforces the encode-side sizing contract shared by all
// codecs.
func checkCapacity(name string, chunk []byte, capacity int) {
	if len(chunk) > capacity {
		panic(fmt.Sprintf("stego: %s codec asked to encode %d bytes, capacity %d", name, len(chunk), capacity))
	}
}

// Registry is the fixed catalog of carrier codecs. It is immutable after
// construction and safe for concurrent reads.
type Registry struct {
	order  []Codec // fixed sniffing priority order
	byName map[string]Codec
}

// NewRegistry builds the full codec catalog. Order matters: it is the
// priority used when sniffing untagged packets, denser formats first.
func NewRegistry() *Registry {
	codecs := []Codec{
		NewJSONCodec(),
		NewRSSCodec(),
		NewHTMLCodec(),
		NewNestedDivCodec(),
		NewGridCodec(),
		NewAnimationCodec(),
		NewPaintWorkletCodec(),
		NewFontCodec(),
		NewSVGPathCodec(),
		NewWAVCodec(),
	}
	byName := make(map[string]Codec, len(codecs))
	for _, c := range codecs {
		byName[c.Name()] = c
	}
	return &Registry{order: codecs, byName: byName}
}

// ByTechnique resolves a codec by technique identifier.
func (r *Registry) ByTechnique(name string) (Codec, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTechnique, name)
	}
	return c, nil
}

// Compatible returns all codecs usable for the given role, in sniffing
// priority order.
func (r *Registry) Compatible(role Role) []Codec {
	var out []Codec
	for _, c := range r.order {
		if c.Capacity(role) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// ByMIME returns the role-compatible codecs serving a MIME type.
func (r *Registry) ByMIME(mime string, role Role) ([]Codec, error) {
	var out []Codec
	for _, c := range r.order {
		if c.MIMEType() == mime && c.Capacity(role) > 0 {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q for %s role", ErrUnsupportedMIMEType, mime, role)
	}
	return out, nil
}

// MIMETypes returns the distinct MIME types served for a role, in
// catalog order.
func (r *Registry) MIMETypes(role Role) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.Compatible(role) {
		if !seen[c.MIMEType()] {
			seen[c.MIMEType()] = true
			out = append(out, c.MIMEType())
		}
	}
	return out
}
