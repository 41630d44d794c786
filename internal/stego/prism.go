package stego

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strings"
)

// NestedDivCodec hides data in nested HTML div structures: the chunk is
// base64 encoded and each character sits at the bottom of a randomly
// deep stack of divs, one stack per line. Depth varies per character so
// repeated payloads do not produce identical markup. Server role only.
type NestedDivCodec struct {
	pageTitle string
	minLayers int
	maxLayers int
}

const nestedDivCapacity = 512

func NewNestedDivCodec() *NestedDivCodec {
	return &NestedDivCodec{
		pageTitle: "Page Title",
		minLayers: 4,
		maxLayers: 16,
	}
}

func (c *NestedDivCodec) Name() string     { return "html_nested_div" }
func (c *NestedDivCodec) MIMEType() string { return "text/html" }

func (c *NestedDivCodec) Capacity(role Role) int {
	if role == RoleClient {
		return 0
	}
	return nestedDivCapacity
}

func (c *NestedDivCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, nestedDivCapacity)

	encoded := base64.StdEncoding.EncodeToString(chunk)

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<title>%s</title>\n</head>\n<body>\n", c.pageTitle)
	b.WriteString("    <div class=\"container\">\n")

	for _, ch := range encoded {
		layers := c.minLayers + rand.IntN(c.maxLayers-c.minLayers+1)
		b.WriteString("        ")
		for i := 1; i <= layers; i++ {
			fmt.Fprintf(&b, "<div class=\"l%d\">", i)
		}
		b.WriteRune(ch)
		for i := 0; i < layers; i++ {
			b.WriteString("</div>")
		}
		b.WriteByte('\n')
	}

	b.WriteString("    </div>\n</body>\n</html>\n")
	return []byte(b.String()), nil
}

func (c *NestedDivCodec) Decode(body []byte) ([]byte, error) {
	html := string(body)
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, "<div class=\"container\">") {
		return nil, fmt.Errorf("%w: not a nested-div document", ErrCorruptPacket)
	}

	var encoded strings.Builder
	for _, line := range strings.Split(html, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "<div class=\"l1\">") {
			continue
		}
		ch, ok := innermostChar(line)
		if !ok {
			return nil, fmt.Errorf("%w: div stack carries no character", ErrCorruptPacket)
		}
		encoded.WriteRune(ch)
	}

	chunk, err := base64.StdEncoding.DecodeString(encoded.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}
	return chunk, nil
}

// innermostChar walks one line of nested divs and returns the first
// non-whitespace character that sits inside the structure.
func innermostChar(line string) (rune, bool) {
	depth := 0
	inTag := false
	for i, ch := range line {
		switch {
		case ch == '<':
			inTag = true
			if strings.HasPrefix(line[i:], "<div") {
				depth++
			} else if strings.HasPrefix(line[i:], "</div") {
				depth--
			}
		case ch == '>':
			inTag = false
		case !inTag && depth > 0 && ch != ' ' && ch != '\t':
			return ch, true
		}
	}
	return 0, false
}
