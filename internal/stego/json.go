package stego

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// JSONCodec hides data in the metadata field of a plausible JSON
// document. Both roles: JSON bodies are natural in API requests and
// responses.
type JSONCodec struct{}

const jsonCapacity = 3072

type jsonDocument struct {
	Type        string `json:"type"`
	Version     string `json:"version"`
	Timestamp   int64  `json:"timestamp"`
	Metadata    string `json:"metadata"`
	Description string `json:"description"`
}

func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Name() string     { return "json_metadata" }
func (c *JSONCodec) MIMEType() string { return "application/json" }

func (c *JSONCodec) Capacity(role Role) int { return jsonCapacity }

func (c *JSONCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, jsonCapacity)

	doc := jsonDocument{
		Type:        "metadata",
		Version:     "1.0",
		Timestamp:   time.Now().Unix(),
		Metadata:    base64.StdEncoding.EncodeToString(chunk),
		Description: "System configuration and metadata",
	}
	return json.Marshal(doc)
}

func (c *JSONCodec) Decode(body []byte) ([]byte, error) {
	var doc jsonDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}
	if doc.Type != "metadata" {
		return nil, fmt.Errorf("%w: missing metadata envelope", ErrCorruptPacket)
	}
	chunk, err := base64.StdEncoding.DecodeString(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}
	return chunk, nil
}
