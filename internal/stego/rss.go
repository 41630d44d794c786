package stego

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// RSSCodec hides data in the guid element of an RSS 2.0 feed item.
// Both roles: feeds travel in responses, feed submissions in requests.
type RSSCodec struct{}

const rssCapacity = 3072

const rssTemplate = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0">
<channel>
    <title>Site News Feed</title>
    <link>http://example.com/feed</link>
    <description>Latest updates and announcements</description>
    <language>en-us</language>
    <pubDate>%[1]s</pubDate>
    <lastBuildDate>%[1]s</lastBuildDate>
    <docs>http://blogs.law.harvard.edu/tech/rss</docs>
    <generator>Feed Generator</generator>
    <item>
        <title>Latest Update</title>
        <link>http://example.com/item/1</link>
        <description>Release notes and updates</description>
        <pubDate>%[1]s</pubDate>
        <guid>%[2]s</guid>
    </item>
</channel>
</rss>`

func NewRSSCodec() *RSSCodec { return &RSSCodec{} }

func (c *RSSCodec) Name() string     { return "xml_rss" }
func (c *RSSCodec) MIMEType() string { return "application/xml" }

func (c *RSSCodec) Capacity(role Role) int { return rssCapacity }

func (c *RSSCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, rssCapacity)

	date := time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
	encoded := base64.StdEncoding.EncodeToString(chunk)
	return []byte(fmt.Sprintf(rssTemplate, date, encoded)), nil
}

func (c *RSSCodec) Decode(body []byte) ([]byte, error) {
	xml := string(body)
	if !strings.HasPrefix(xml, "<?xml") || !strings.Contains(xml, "<rss version=\"2.0\">") {
		return nil, fmt.Errorf("%w: not an RSS feed", ErrCorruptPacket)
	}

	start := strings.Index(xml, "<guid>")
	if start < 0 {
		return nil, fmt.Errorf("%w: missing guid element", ErrCorruptPacket)
	}
	rest := xml[start+len("<guid>"):]
	end := strings.Index(rest, "</guid>")
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated guid element", ErrCorruptPacket)
	}

	chunk, err := base64.StdEncoding.DecodeString(rest[:end])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPacket, err)
	}
	return chunk, nil
}
