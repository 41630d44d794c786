package conf

import (
	"fmt"
	"slices"

	"rainbow/internal/stego"
)

type Encoding struct {
	// ChunkSize caps how many payload bytes one packet may carry.
	// Codecs with smaller capacities carry less.
	ChunkSize int `yaml:"chunk_size"`

	// MIMEType forces every packet through carriers of one MIME type.
	// Empty means a random compatible technique per packet.
	MIMEType string `yaml:"mime_type"`

	// Compress runs the payload through zstd before packetization.
	Compress bool `yaml:"compress"`
}

func (e *Encoding) setDefaults() {
	if e.ChunkSize == 0 {
		e.ChunkSize = 1024
	}
}

func (e *Encoding) validate(role string) []error {
	var errors []error

	if e.ChunkSize < 1 {
		errors = append(errors, fmt.Errorf("encoding chunk_size must be positive, got %d", e.ChunkSize))
	}

	if e.MIMEType != "" {
		r := stego.RoleServer
		if role == "client" {
			r = stego.RoleClient
		}
		supported := stego.NewRegistry().MIMETypes(r)
		if !slices.Contains(supported, e.MIMEType) {
			errors = append(errors, fmt.Errorf("encoding mime_type %q is not served for %s role, supported: %v",
				e.MIMEType, role, supported))
		}
	}
	return errors
}
