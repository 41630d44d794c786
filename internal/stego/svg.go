package stego

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SVGPathCodec hides data in SVG path start coordinates. Each byte maps
// to a 16x16 lattice point scaled by 10 (x = low nibble, y = high
// nibble); the quadratic curve and animation around it are decorative.
// Both roles: SVG uploads and responses are both plausible.
type SVGPathCodec struct {
	viewboxWidth  int
	viewboxHeight int
}

const svgPathCapacity = 1024

var svgPathRe = regexp.MustCompile(`<path[^>]+d="M\s*(\d+),(\d+)`)

func NewSVGPathCodec() *SVGPathCodec {
	return &SVGPathCodec{viewboxWidth: 800, viewboxHeight: 600}
}

func (c *SVGPathCodec) Name() string     { return "svg_path" }
func (c *SVGPathCodec) MIMEType() string { return "image/svg+xml" }

func (c *SVGPathCodec) Capacity(role Role) int { return svgPathCapacity }

func (c *SVGPathCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, svgPathCapacity)

	paths := make([]string, len(chunk))
	for i, byt := range chunk {
		paths[i] = bytePath(byt, i+1)
	}

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 %d %d">
    <defs>
        <filter id="blur">
            <feGaussianBlur stdDeviation="0.5"/>
        </filter>
    </defs>
    %s
</svg>`, c.viewboxWidth, c.viewboxHeight, strings.Join(paths, "\n    "))

	return []byte(svg), nil
}

// bytePath renders one byte as an animated quadratic curve whose start
// point carries the value.
func bytePath(byt byte, index int) string {
	x := int(byt%16) * 10
	y := int(byt/16) * 10
	return fmt.Sprintf(`<path id="p%d" d="M %d,%d Q%d,%d %d,%d">
        <animate attributeName="d" dur="%d.%ds" values="M %d,%d Q%d,%d %d,%d M %d,%d Q%d,%d %d,%d" repeatCount="indefinite"/>
    </path>`,
		index, x, y, x+10, y+10, x+20, y,
		int(byt%3)+1, int(byt%10),
		x, y, x+10, y+10, x+20, y,
		x+5, y+5, x+15, y+15, x+25, y+5)
}

func (c *SVGPathCodec) Decode(body []byte) ([]byte, error) {
	svg := string(body)
	if !strings.Contains(svg, "<svg xmlns=\"http://www.w3.org/2000/svg\"") || !strings.Contains(svg, "</svg>") {
		return nil, fmt.Errorf("%w: not an SVG document", ErrCorruptPacket)
	}

	var chunk []byte
	for _, m := range svgPathRe.FindAllStringSubmatch(svg, -1) {
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		if x%10 != 0 || y%10 != 0 || x/10 > 15 || y/10 > 15 {
			return nil, fmt.Errorf("%w: path origin (%d,%d) outside encoding lattice", ErrCorruptPacket, x, y)
		}
		chunk = append(chunk, byte(y/10*16+x/10))
	}
	return chunk, nil
}
