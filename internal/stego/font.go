package stego

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FontCodec hides data in font-variation-settings. The high nibble of
// each byte becomes a font weight (100-1600 in steps of 100), the low
// nibble a width (0-90 in steps of 6); a slant derived from the byte
// adds visual variety but carries no information. Server role only.
type FontCodec struct {
	pageTitle  string
	fontFamily string
	heading    string
	tailText   string
}

const fontCapacity = 768

var fontVariationRe = regexp.MustCompile(`font-variation-settings:\s*'wght'\s*(\d+),\s*'wdth'\s*(\d+),\s*'slnt'\s*(\d+)`)

func NewFontCodec() *FontCodec {
	return &FontCodec{
		pageTitle:  "Typography Showcase",
		fontFamily: "Variable",
		heading:    "Typography Examples",
		tailText:   "Exploring variable fonts in modern web design.",
	}
}

func (c *FontCodec) Name() string     { return "font_property" }
func (c *FontCodec) MIMEType() string { return "text/html" }

func (c *FontCodec) Capacity(role Role) int {
	if role == RoleClient {
		return 0
	}
	return fontCapacity
}

func (c *FontCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, fontCapacity)

	var variations []string
	var chars []string
	for i, byt := range chunk {
		weight := int(byt>>4)*100 + 100
		width := int(byt&0x0f) * 6
		slant := int(byt%4) * 5
		variations = append(variations, fmt.Sprintf(`.v%d {
            font-variation-settings: 'wght' %d, 'wdth' %d, 'slnt' %d;
            font-family: '%s';
        }`, i+1, weight, width, slant, c.fontFamily))
		chars = append(chars, fmt.Sprintf("<span class=\"v%d\">O</span>", i+1))
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        @font-face {
            font-family: '%s';
            src: url('data:font/woff2;base64,d09GMgABAAA...') format('woff2');
            font-weight: 100 900;
            font-stretch: 25%% 151%%;
            font-style: oblique 0deg 15deg;
        }
        body {
            font-family: '%s', sans-serif;
            line-height: 1.5;
        }
        %s
    </style>
</head>
<body>
    <div class="content">
        <h1>%s</h1>
        %s
        <p>%s</p>
    </div>
</body>
</html>`, c.pageTitle, c.fontFamily, c.fontFamily,
		strings.Join(variations, "\n        "),
		c.heading,
		strings.Join(chars, "\n        "),
		c.tailText)

	return []byte(html), nil
}

func (c *FontCodec) Decode(body []byte) ([]byte, error) {
	html := string(body)
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, "@font-face") {
		return nil, fmt.Errorf("%w: not a font showcase document", ErrCorruptPacket)
	}

	var chunk []byte
	for _, m := range fontVariationRe.FindAllStringSubmatch(html, -1) {
		weight, _ := strconv.Atoi(m[1])
		width, _ := strconv.Atoi(m[2])
		if weight < 100 || weight > 1600 || weight%100 != 0 || width > 90 || width%6 != 0 {
			return nil, fmt.Errorf("%w: variation settings outside encoding lattice", ErrCorruptPacket)
		}
		chunk = append(chunk, byte((weight-100)/100<<4|width/6))
	}
	return chunk, nil
}
