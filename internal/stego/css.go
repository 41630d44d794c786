package stego

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// AnimationCodec hides data in CSS animation-delay values. Every byte
// becomes eight delays on one keyframe animation: one delay value for a
// set bit, another for a clear bit. Both roles.
type AnimationCodec struct {
	animPrefix string
	elemPrefix string
	delayOne   string
	delayZero  string
}

const animationCapacity = 512

var animationDelayRe = regexp.MustCompile(`animation-delay:\s*([^;]+);`)

func NewAnimationCodec() *AnimationCodec {
	return &AnimationCodec{
		animPrefix: "fade",
		elemPrefix: "item",
		delayOne:   "0.1s",
		delayZero:  "0.2s",
	}
}

func (c *AnimationCodec) Name() string     { return "css_animation" }
func (c *AnimationCodec) MIMEType() string { return "text/css" }

func (c *AnimationCodec) Capacity(role Role) int { return animationCapacity }

func (c *AnimationCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, animationCapacity)

	var b strings.Builder
	b.WriteString(".content { font-family: Arial; line-height: 1.6; }\n")

	for _, byt := range chunk {
		animName := fmt.Sprintf("%s%d", c.animPrefix, 10000+rand.IntN(90000))
		elemID := fmt.Sprintf("%s%d", c.elemPrefix, 10000+rand.IntN(90000))

		delays := make([]string, 8)
		for i := 0; i < 8; i++ {
			if byt>>(7-i)&1 == 1 {
				delays[i] = c.delayOne
			} else {
				delays[i] = c.delayZero
			}
		}

		fmt.Fprintf(&b, `@keyframes %[1]s {
    0%% { opacity: 1; }
    100%% { opacity: 1; }
}
#%[2]s {
    animation: %[1]s 1s;
    animation-delay: %[3]s;
    display: inline-block;
}
`, animName, elemID, strings.Join(delays, ","))
	}

	return []byte(b.String()), nil
}

func (c *AnimationCodec) Decode(body []byte) ([]byte, error) {
	css := string(body)
	if !strings.Contains(css, ".content {") {
		return nil, fmt.Errorf("%w: not an animation stylesheet", ErrCorruptPacket)
	}

	var bits []byte
	for _, m := range animationDelayRe.FindAllStringSubmatch(css, -1) {
		for _, delay := range strings.Split(m[1], ",") {
			switch strings.TrimSpace(delay) {
			case c.delayOne:
				bits = append(bits, 1)
			case c.delayZero:
				bits = append(bits, 0)
			default:
				return nil, fmt.Errorf("%w: unexpected delay value %q", ErrCorruptPacket, delay)
			}
		}
	}
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: truncated bit stream", ErrCorruptPacket)
	}

	chunk := make([]byte, 0, len(bits)/8)
	for i := 0; i < len(bits); i += 8 {
		var byt byte
		for j, bit := range bits[i : i+8] {
			byt |= bit << (7 - j)
		}
		chunk = append(chunk, byt)
	}
	return chunk, nil
}
