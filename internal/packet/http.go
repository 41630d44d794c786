package packet

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cookieNames are plausible names for the cookie that carries the
// packet tag. The decoder tries every cookie, so any of them works.
var cookieNames = []string{"sessionId", "visitor", "track", "_ga_srv", "JSESSIONID", "cf_id"}

// postPaths look like endpoints that accept request bodies.
var postPaths = []string{
	"/api/v1/data",
	"/api/v1/upload",
	"/api/v2/submit",
	"/upload",
	"/submit",
	"/process",
}

type httpStatus struct {
	code   int
	text   string
	weight float64
}

// statusCodes and their sampling weights, skewed heavily toward 200.
var statusCodes = []httpStatus{
	{200, "OK", 0.9},
	{201, "Created", 0.025},
	{202, "Accepted", 0.025},
	{204, "No Content", 0.025},
	{206, "Partial Content", 0.025},
}

func httpDate() string {
	return time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}

// BuildRequest wraps an encoded carrier body into a complete HTTP/1.1
// POST request whose Content-Type matches the codec output and whose
// Cookie header smuggles the packet tag among decoy cookies.
func BuildRequest(body []byte, mime string, info *Info) ([]byte, error) {
	cookie, err := buildCookie(info)
	if err != nil {
		return nil, err
	}

	path := postPaths[rand.IntN(len(postPaths))]

	var h strings.Builder
	fmt.Fprintf(&h, "POST %s HTTP/1.1\r\n", path)
	h.WriteString("Host: localhost\r\n")
	fmt.Fprintf(&h, "Date: %s\r\n", httpDate())
	h.WriteString("User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36\r\n")
	h.WriteString("Accept: */*\r\n")
	h.WriteString("Accept-Language: en-US,en;q=0.9\r\n")
	h.WriteString("Accept-Encoding: gzip, deflate, br\r\n")
	if rand.IntN(2) == 0 {
		h.WriteString("DNT: 1\r\n")
	}
	if rand.IntN(2) == 0 {
		h.WriteString("Cache-Control: max-age=0\r\n")
	}
	fmt.Fprintf(&h, "Cookie: %s\r\n", cookie)
	fmt.Fprintf(&h, "Content-Type: %s\r\n", mime)
	fmt.Fprintf(&h, "Content-Length: %d\r\n", len(body))
	h.WriteString("\r\n")

	return append([]byte(h.String()), body...), nil
}

// BuildResponse wraps an encoded carrier body into a complete HTTP/1.1
// response. The tag rides in a Set-Cookie header.
func BuildResponse(body []byte, mime string, info *Info) ([]byte, error) {
	cookie, err := buildCookie(info)
	if err != nil {
		return nil, err
	}

	status := pickStatus()

	var h strings.Builder
	fmt.Fprintf(&h, "HTTP/1.1 %d %s\r\n", status.code, status.text)
	fmt.Fprintf(&h, "Date: %s\r\n", httpDate())
	h.WriteString("Server: nginx/1.18.0\r\n")
	h.WriteString("X-Frame-Options: SAMEORIGIN\r\n")
	h.WriteString("X-Content-Type-Options: nosniff\r\n")
	if rand.IntN(2) == 0 {
		h.WriteString("Strict-Transport-Security: max-age=31536000; includeSubDomains\r\n")
	}
	fmt.Fprintf(&h, "Set-Cookie: %s\r\n", cookie)
	fmt.Fprintf(&h, "Content-Type: %s\r\n", mime)
	fmt.Fprintf(&h, "Content-Length: %d\r\n", len(body))
	h.WriteString("\r\n")

	return append([]byte(h.String()), body...), nil
}

func pickStatus() httpStatus {
	r := rand.Float64()
	acc := 0.0
	for _, s := range statusCodes {
		acc += s.weight
		if r < acc {
			return s
		}
	}
	return statusCodes[0]
}

// buildCookie produces the cookie string: the tag under a random
// plausible name, a session id, and a few random decoys.
func buildCookie(info *Info) (string, error) {
	value, err := info.CookieValue()
	if err != nil {
		return "", err
	}

	cookies := []string{
		fmt.Sprintf("%s=%s", cookieNames[rand.IntN(len(cookieNames))], value),
		fmt.Sprintf("sid=%s", uuid.New()),
	}
	if rand.IntN(2) == 0 {
		cookies = append(cookies, fmt.Sprintf("_ga=GA1.2.%d.%d", rand.Uint32(), rand.Uint32()))
	}
	if rand.IntN(2) == 0 {
		cookies = append(cookies, fmt.Sprintf("_gid=GA1.2.%d", rand.Uint32()))
	}
	if rand.IntN(2) == 0 {
		cookies = append(cookies, "theme=light")
	}
	return strings.Join(cookies, "; "), nil
}
