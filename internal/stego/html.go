package stego

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"strings"
)

// HTMLCodec hides data in an HTML comment node. The chunk is base64
// encoded, so the comment never contains "--" and the document stays
// well formed. Server role only: browsers do not send HTML documents
// in request bodies.
type HTMLCodec struct {
	pageTitle string
	heading   string
	content   string
}

const htmlCommentCapacity = 3072

const (
	htmlCommentOpen  = "<!-- cache:"
	htmlCommentClose = " -->"
)

var htmlTemplates = []string{
	`<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <div class="container">
        <h1>%[2]s</h1>
        <p>%[3]s</p>
        %[4]s
    </div>
</body>
</html>`,
	`<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <article>
        <h1>%[2]s</h1>
        <section>
            %[4]s
            <p>%[3]s</p>
        </section>
    </article>
</body>
</html>`,
}

func NewHTMLCodec() *HTMLCodec {
	return &HTMLCodec{
		pageTitle: "Welcome",
		heading:   "Welcome to our site",
		content:   "This is a sample page.",
	}
}

func (c *HTMLCodec) Name() string     { return "html_comment" }
func (c *HTMLCodec) MIMEType() string { return "text/html" }

func (c *HTMLCodec) Capacity(role Role) int {
	if role == RoleClient {
		return 0
	}
	return htmlCommentCapacity
}

func (c *HTMLCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, htmlCommentCapacity)

	comment := htmlCommentOpen + base64.StdEncoding.EncodeToString(chunk) + htmlCommentClose
	tpl := htmlTemplates[rand.IntN(len(htmlTemplates))]
	html := fmt.Sprintf(tpl, c.pageTitle, c.heading, c.content, comment)
	return []byte(html), nil
}

func (c *HTMLCodec) Decode(body []byte) ([]byte, error) {
	html := string(body)
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, "</html>") {
		return nil, fmt.Errorf("%w: not an HTML document", ErrCorruptPacket)
	}

	start := strings.Index(html, htmlCommentOpen)
	if start < 0 {
		return nil, fmt.Errorf("%w: missing comment node", ErrCorruptPacket)
	}
	rest := html[start+len(htmlCommentOpen):]
	end := strings.Index(rest, htmlCommentClose)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated comment node", ErrCorruptPacket)
	}

	chunk, err := base64.StdEncoding.DecodeString(rest[:end])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}
	return chunk, nil
}
