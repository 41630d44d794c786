package stego

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaintWorkletCodec hides data in CSS Paint API parameters. Each byte is
// split into rgb components (3+3+2 bits) of a paint parameter list that
// is stored in a registered custom property; the worklet source rides
// along in a comment so the stylesheet stays plausible. Both roles.
type PaintWorkletCodec struct {
	workletName  string
	className    string
	propertyName string
}

const paintWorkletCapacity = 1024

type paintParam struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
	Size   float64 `json:"size"`
}

func NewPaintWorkletCodec() *PaintWorkletCodec {
	return &PaintWorkletCodec{
		workletName:  "dots",
		className:    "decorated",
		propertyName: "--paint-params",
	}
}

func (c *PaintWorkletCodec) Name() string     { return "css_paint_worklet" }
func (c *PaintWorkletCodec) MIMEType() string { return "text/css" }

func (c *PaintWorkletCodec) Capacity(role Role) int { return paintWorkletCapacity }

func (c *PaintWorkletCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, paintWorkletCapacity)

	params := make([]paintParam, len(chunk))
	for i, byt := range chunk {
		r := byt >> 5
		g := byt >> 2 & 0x07
		b := byt & 0x03
		params[i] = paintParam{
			Color:  fmt.Sprintf("rgb(%d,%d,%d)", int(r)*32, int(g)*32, int(b)*64),
			Offset: float64(i) / 10,
			Size:   1 + float64(i%3)/2,
		}
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	css := fmt.Sprintf(`/* paint worklet: registerPaint('%[1]s', class {
   static get inputProperties() { return ['%[2]s']; }
   paint(ctx, size, props) {
     for (const p of JSON.parse(props.get('%[2]s'))) {
       ctx.fillStyle = p.color;
       ctx.fillRect(size.width * p.offset, size.height * p.offset, p.size, p.size);
     }
   }
 }) */
@property %[2]s {
    syntax: '*';
    inherits: false;
    initial-value: '%[3]s';
}
.%[4]s {
    %[2]s: '%[3]s';
    background-image: paint(%[1]s);
}
`, c.workletName, c.propertyName, encoded, c.className)

	return []byte(css), nil
}

func (c *PaintWorkletCodec) Decode(body []byte) ([]byte, error) {
	css := string(body)
	marker := c.propertyName + ": '"
	start := strings.Index(css, "\n    "+marker)
	if start < 0 {
		return nil, fmt.Errorf("%w: missing paint parameter property", ErrCorruptPacket)
	}
	rest := css[start+len(marker)+5:]
	end := strings.Index(rest, "';")
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated paint parameter value", ErrCorruptPacket)
	}

	var params []paintParam
	if err := json.Unmarshal([]byte(rest[:end]), &params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}

	chunk := make([]byte, 0, len(params))
	for _, p := range params {
		var r, g, b int
		if _, err := fmt.Sscanf(p.Color, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("%w: malformed color %q", ErrCorruptPacket, p.Color)
		}
		if r%32 != 0 || r > 224 || g%32 != 0 || g > 224 || b%64 != 0 || b > 192 {
			return nil, fmt.Errorf("%w: color %q outside encoding lattice", ErrCorruptPacket, p.Color)
		}
		chunk = append(chunk, byte(r/32<<5|g/32<<2|b/64))
	}
	return chunk, nil
}
