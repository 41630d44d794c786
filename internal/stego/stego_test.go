package stego

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testPayloads() map[string][]byte {
	seq := make([]byte, 256)
	for i := range seq {
		seq[i] = byte(i)
	}
	zeros := make([]byte, 64)
	ones := bytes.Repeat([]byte{0xFF}, 64)
	return map[string][]byte{
		"empty":     {},
		"text":      []byte("Hello, Steganography!"),
		"all zeros": zeros,
		"all ones":  ones,
		"sequence":  seq,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	reg := NewRegistry()
	for _, codec := range reg.Compatible(RoleServer) {
		for name, payload := range testPayloads() {
			t.Run(codec.Name()+"/"+name, func(t *testing.T) {
				body, err := codec.Encode(payload)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				got, err := codec.Decode(body)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if !bytes.Equal(got, payload) {
					t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
				}
			})
		}
	}
}

// Repeated encodes of the same chunk must stay decodable even though
// several codecs randomize their markup.
func TestCodecRoundTripRepeated(t *testing.T) {
	reg := NewRegistry()
	payload := []byte("repeatable")
	for _, codec := range reg.Compatible(RoleServer) {
		t.Run(codec.Name(), func(t *testing.T) {
			for i := 0; i < 20; i++ {
				body, err := codec.Encode(payload)
				if err != nil {
					t.Fatalf("Encode #%d: %v", i, err)
				}
				got, err := codec.Decode(body)
				if err != nil {
					t.Fatalf("Decode #%d: %v", i, err)
				}
				if !bytes.Equal(got, payload) {
					t.Fatalf("round trip #%d mismatch", i)
				}
			}
		})
	}
}

func TestCarrierBodiesAreValidDocuments(t *testing.T) {
	reg := NewRegistry()
	payload := []byte("carrier validity probe")
	checks := map[string]func([]byte) bool{
		"html_comment": func(b []byte) bool {
			return bytes.HasPrefix(b, []byte("<!DOCTYPE html>")) && bytes.Contains(b, []byte("</html>"))
		},
		"html_nested_div": func(b []byte) bool {
			return bytes.HasPrefix(b, []byte("<!DOCTYPE html>")) && bytes.Contains(b, []byte("</html>"))
		},
		"font_property": func(b []byte) bool {
			return bytes.HasPrefix(b, []byte("<!DOCTYPE html>")) && bytes.Contains(b, []byte("@font-face"))
		},
		"json_metadata": json.Valid,
		"xml_rss": func(b []byte) bool {
			return bytes.HasPrefix(b, []byte("<?xml")) && bytes.Contains(b, []byte("</rss>"))
		},
		"svg_path": func(b []byte) bool {
			return bytes.Contains(b, []byte(`<svg xmlns="http://www.w3.org/2000/svg"`)) && bytes.Contains(b, []byte("</svg>"))
		},
		"css_grid": func(b []byte) bool {
			return bytes.Contains(b, []byte("display: grid;")) && bytes.HasSuffix(bytes.TrimSpace(b), []byte("}"))
		},
		"css_animation": func(b []byte) bool {
			return bytes.Contains(b, []byte("@keyframes"))
		},
		"css_paint_worklet": func(b []byte) bool {
			return bytes.Contains(b, []byte("@property")) && bytes.Contains(b, []byte("paint("))
		},
		"wav_audio": func(b []byte) bool {
			return len(b) >= 44 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
		},
	}

	for _, codec := range reg.Compatible(RoleServer) {
		t.Run(codec.Name(), func(t *testing.T) {
			check, ok := checks[codec.Name()]
			if !ok {
				t.Fatalf("no validity check for %s", codec.Name())
			}
			body, err := codec.Encode(payload)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !check(body) {
				t.Errorf("carrier body fails validity check:\n%s", body)
			}
		})
	}
}

func TestCodecRoles(t *testing.T) {
	serverOnly := map[string]bool{
		"html_comment":    true,
		"html_nested_div": true,
		"font_property":   true,
	}

	reg := NewRegistry()
	for _, codec := range reg.Compatible(RoleServer) {
		if codec.Capacity(RoleServer) <= 0 {
			t.Errorf("%s: no server capacity", codec.Name())
		}
		clientCap := codec.Capacity(RoleClient)
		if serverOnly[codec.Name()] && clientCap != 0 {
			t.Errorf("%s: want client capacity 0, got %d", codec.Name(), clientCap)
		}
		if !serverOnly[codec.Name()] && clientCap <= 0 {
			t.Errorf("%s: want positive client capacity, got %d", codec.Name(), clientCap)
		}
	}

	for _, codec := range reg.Compatible(RoleClient) {
		if serverOnly[codec.Name()] {
			t.Errorf("%s offered for client role", codec.Name())
		}
	}
}

func TestEncodeOverCapacityPanics(t *testing.T) {
	codec := NewJSONCodec()
	over := make([]byte, codec.Capacity(RoleClient)+1)

	defer func() {
		if recover() == nil {
			t.Fatal("Encode over capacity did not panic")
		}
	}()
	codec.Encode(over)
}

func TestRegistryByTechnique(t *testing.T) {
	reg := NewRegistry()

	codec, err := reg.ByTechnique("wav_audio")
	if err != nil {
		t.Fatalf("ByTechnique: %v", err)
	}
	if codec.Name() != "wav_audio" {
		t.Errorf("got %s", codec.Name())
	}

	if _, err := reg.ByTechnique("carrier_pigeon"); !errors.Is(err, ErrUnknownTechnique) {
		t.Errorf("want ErrUnknownTechnique, got %v", err)
	}
}

func TestRegistryByMIME(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		mime    string
		role    Role
		wantN   int
		wantErr error
	}{
		{"json for client", "application/json", RoleClient, 1, nil},
		{"css for client", "text/css", RoleClient, 3, nil},
		{"html for server", "text/html", RoleServer, 3, nil},
		{"html for client", "text/html", RoleClient, 0, ErrUnsupportedMIMEType},
		{"unknown type", "video/mp4", RoleServer, 0, ErrUnsupportedMIMEType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codecs, err := reg.ByMIME(tt.mime, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ByMIME: %v", err)
			}
			if len(codecs) != tt.wantN {
				t.Errorf("want %d codecs, got %d", tt.wantN, len(codecs))
			}
		})
	}
}

func TestRegistryMIMETypes(t *testing.T) {
	reg := NewRegistry()

	server := reg.MIMETypes(RoleServer)
	want := []string{"application/json", "application/xml", "text/html", "text/css", "image/svg+xml", "audio/wav"}
	if len(server) != len(want) {
		t.Fatalf("server MIME types: got %v", server)
	}

	for _, mime := range reg.MIMETypes(RoleClient) {
		if mime == "text/html" {
			t.Error("text/html offered for client role")
		}
	}
}

func TestDecodeCorruptBodies(t *testing.T) {
	tests := []struct {
		technique string
		body      string
	}{
		{"html_comment", "<p>not a document</p>"},
		{"html_comment", "<!DOCTYPE html>\n<html><body><!-- cache:@@@@ --></body></html>"},
		{"html_nested_div", "<!DOCTYPE html>\n<html><body><div class=\"container\">\n<div class=\"l1\">@</div>\n</div></body></html>"},
		{"json_metadata", "{broken"},
		{"json_metadata", `{"type":"other","metadata":"aGk="}`},
		{"xml_rss", "<html></html>"},
		{"xml_rss", `<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`},
		{"css_grid", "p { color: red; }"},
		{"css_grid", ".x {\n  display: grid;\n  gap: 999px;\n}"},
		{"css_animation", ".content { }\n#item1 {\n    animation-delay: 0.5s;\n}"},
		{"css_paint_worklet", ".decorated { background: paint(dots); }"},
		{"font_property", "<!DOCTYPE html>\n<html><head><style>@font-face {}\n.v1 { font-variation-settings: 'wght' 150, 'wdth' 6, 'slnt' 0; }</style></head></html>"},
		{"svg_path", "<p>hi</p>"},
		{"svg_path", `<svg xmlns="http://www.w3.org/2000/svg"><path d="M 15,15 Q25,25 35,15"/></svg>`},
		{"wav_audio", "RIFF"},
		{"wav_audio", "JUNKxxxxJUNKxxxxJUNKxxxxJUNKxxxxJUNKxxxxJUNK"},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.technique+"/"+tt.body[:min(16, len(tt.body))], func(t *testing.T) {
			codec, err := reg.ByTechnique(tt.technique)
			if err != nil {
				t.Fatalf("ByTechnique: %v", err)
			}
			if _, err := codec.Decode([]byte(tt.body)); !errors.Is(err, ErrCorruptPacket) {
				t.Errorf("want ErrCorruptPacket, got %v", err)
			}
		})
	}
}

// Sniffing relies on codecs rejecting bodies they did not produce.
func TestCodecsRejectForeignBodies(t *testing.T) {
	reg := NewRegistry()
	codecs := reg.Compatible(RoleServer)
	payload := []byte("cross codec probe")

	for _, producer := range codecs {
		body, err := producer.Encode(payload)
		if err != nil {
			t.Fatalf("%s Encode: %v", producer.Name(), err)
		}
		for _, consumer := range codecs {
			if consumer.Name() == producer.Name() {
				continue
			}
			// Same-MIME HTML carriers are disambiguated by sniffing
			// order, not by rejection.
			if consumer.MIMEType() == producer.MIMEType() {
				continue
			}
			if got, err := consumer.Decode(body); err == nil && len(got) > 0 {
				t.Errorf("%s decoded a %s body to %d bytes", consumer.Name(), producer.Name(), len(got))
			}
		}
	}
}

func TestNestedDivDepthVaries(t *testing.T) {
	codec := NewNestedDivCodec()
	body, err := codec.Encode(bytes.Repeat([]byte("x"), 30))
	if err != nil {
		t.Fatal(err)
	}

	depths := make(map[int]bool)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "<div class=\"l1\">") {
			depths[strings.Count(line, "<div")] = true
		}
	}
	if len(depths) < 2 {
		t.Errorf("expected varying nesting depth, got %v", depths)
	}
}
