package stego

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GridCodec hides data in CSS grid layout properties. Bytes are taken
// in pairs: the first becomes a pixel gap value, the second a
// grid-template-area name suffix. Both roles: stylesheets travel in
// responses and in asset-upload requests alike.
type GridCodec struct {
	containerClass string
}

const gridCapacity = 1024

var (
	gridGapRe  = regexp.MustCompile(`gap:\s*(\d+)px`)
	gridAreaRe = regexp.MustCompile(`"a(\d+)"`)
)

func NewGridCodec() *GridCodec {
	return &GridCodec{containerClass: "layout-container"}
}

func (c *GridCodec) Name() string     { return "css_grid" }
func (c *GridCodec) MIMEType() string { return "text/css" }

func (c *GridCodec) Capacity(role Role) int { return gridCapacity }

func (c *GridCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, gridCapacity)

	var css []string
	var areas []string

	css = append(css, fmt.Sprintf(".%s {", c.containerClass))
	css = append(css, "  display: grid;")
	css = append(css, "  grid-template-columns: repeat(auto-fill, minmax(100px, 1fr));")

	for i := 0; i < len(chunk); i += 2 {
		css = append(css, fmt.Sprintf("  gap: %dpx;", chunk[i]))
		if i+1 < len(chunk) {
			areas = append(areas, fmt.Sprintf("\"a%d\"", chunk[i+1]))
		}
	}

	if len(areas) > 0 {
		css = append(css, fmt.Sprintf("  grid-template-areas: %s;", strings.Join(areas, " ")))
	}
	css = append(css, "}")

	return []byte(strings.Join(css, "\n")), nil
}

func (c *GridCodec) Decode(body []byte) ([]byte, error) {
	css := string(body)
	if !strings.Contains(css, "display: grid;") {
		return nil, fmt.Errorf("%w: not a grid stylesheet", ErrCorruptPacket)
	}

	gaps, err := parseByteValues(gridGapRe, css)
	if err != nil {
		return nil, err
	}
	areas, err := parseByteValues(gridAreaRe, css)
	if err != nil {
		return nil, err
	}
	if len(areas) > len(gaps) || len(gaps)-len(areas) > 1 {
		return nil, fmt.Errorf("%w: gap/area count mismatch", ErrCorruptPacket)
	}

	chunk := make([]byte, 0, len(gaps)+len(areas))
	for i, gap := range gaps {
		chunk = append(chunk, gap)
		if i < len(areas) {
			chunk = append(chunk, areas[i])
		}
	}
	return chunk, nil
}

// parseByteValues extracts the first capture group of each match and
// range-checks it as a byte.
func parseByteValues(re *regexp.Regexp, css string) ([]byte, error) {
	var out []byte
	for _, m := range re.FindAllStringSubmatch(css, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil || v > 255 {
			return nil, fmt.Errorf("%w: property value %q out of byte range", ErrCorruptPacket, m[1])
		}
		out = append(out, byte(v))
	}
	return out, nil
}
