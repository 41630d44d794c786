// Package rainbow turns byte payloads into sequences of synthetic HTTP
// messages whose bodies hide the data inside valid carrier documents,
// and recovers the payload from such messages.
package rainbow

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/klauspost/compress/zstd"

	"rainbow/internal/flog"
	"rainbow/internal/packet"
	"rainbow/internal/stego"
)

// DefaultChunkCeiling caps chunk sizes below every codec's capacity so
// no single packet body grows conspicuously large.
const DefaultChunkCeiling = 1024

// Rainbow is the encode/decode engine. It holds no per-call state and
// is safe for concurrent use.
type Rainbow struct {
	reg          *stego.Registry
	sel          *selector
	chunkCeiling int
	compress     bool
}

// Option configures a Rainbow at construction.
type Option func(*Rainbow)

// WithChunkCeiling lowers or raises the per-chunk size cap.
func WithChunkCeiling(n int) Option {
	return func(r *Rainbow) {
		if n > 0 {
			r.chunkCeiling = n
		}
	}
}

// WithCompression enables zstd compression of the payload before
// packetization. Reassemble reverses it transparently; raw
// DecryptSingleRead output is then compressed fragments.
func WithCompression(on bool) Option {
	return func(r *Rainbow) { r.compress = on }
}

// WithRandSource pins technique selection to a deterministic sequence.
func WithRandSource(src rand.Source) Option {
	return func(r *Rainbow) { r.sel = newSelector(src) }
}

// New builds an engine over the full codec catalog.
func New(opts ...Option) *Rainbow {
	r := &Rainbow{
		reg:          stego.NewRegistry(),
		sel:          newSelector(nil),
		chunkCeiling: DefaultChunkCeiling,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EncodeResult is an ordered packet sequence plus the bookkeeping a
// caller needs to know when a transmission is complete.
type EncodeResult struct {
	Packets               [][]byte
	TotalChunks           int
	PayloadLen            int
	ExpectedReturnLengths []int
}

// DecodeResult is one recovered chunk plus its position in the
// transmission.
type DecodeResult struct {
	Data                 []byte
	Index                int
	Total                int
	ExpectedReturnLength int
	IsReadEnd            bool
	Compressed           bool

	// Cover marks a packet whose chunk is filler. Reassemble drops it.
	Cover bool
}

func roleFor(isClient bool) stego.Role {
	if isClient {
		return stego.RoleClient
	}
	return stego.RoleServer
}

// EncodeWrite splits data into chunks, hides each chunk in a carrier
// body and wraps it in a request (client) or response (server).
// mimeType "" selects a random compatible technique per chunk; an
// explicit MIME type routes every chunk through codecs serving it.
func (r *Rainbow) EncodeWrite(data []byte, isClient bool, mimeType string) (*EncodeResult, error) {
	role := roleFor(isClient)
	flog.Debugf("encoding %d bytes as %s", len(data), role)

	payload := data
	var flags uint8
	if r.compress && len(data) > 0 {
		compressed, err := compressPayload(data)
		if err != nil {
			return nil, err
		}
		payload = compressed
		flags |= packet.FlagZstd
	}

	var candidates []stego.Codec
	if mimeType != "" {
		var err error
		candidates, err = r.reg.ByMIME(mimeType, role)
		if err != nil {
			return nil, err
		}
	} else {
		candidates = r.reg.Compatible(role)
	}

	// Plan all chunks first so every packet tag carries the true total.
	type chunkPlan struct {
		codec stego.Codec
		chunk []byte
	}
	var plans []chunkPlan
	cursor := 0
	for {
		codec := r.sel.pick(candidates)
		size := codec.Capacity(role)
		if size > r.chunkCeiling {
			size = r.chunkCeiling
		}
		if remaining := len(payload) - cursor; size > remaining {
			size = remaining
		}
		plans = append(plans, chunkPlan{codec, payload[cursor : cursor+size]})
		cursor += size
		if cursor >= len(payload) {
			break
		}
	}

	res := &EncodeResult{TotalChunks: len(plans), PayloadLen: len(data)}
	for i, p := range plans {
		body, err := p.codec.Encode(p.chunk)
		if err != nil {
			return nil, fmt.Errorf("encode chunk %d with %s: %w", i, p.codec.Name(), err)
		}

		retLen := expectedReturnLength(isClient)
		info := packet.NewInfo(i, len(plans), len(p.chunk), p.codec.Name(), flags)
		info.ExpectedReturn = retLen
		var pkt []byte
		if isClient {
			pkt, err = packet.BuildRequest(body, p.codec.MIMEType(), info)
		} else {
			pkt, err = packet.BuildResponse(body, p.codec.MIMEType(), info)
		}
		if err != nil {
			return nil, err
		}

		res.Packets = append(res.Packets, pkt)
		res.ExpectedReturnLengths = append(res.ExpectedReturnLengths, retLen)
		flog.Debugf("packet %d/%d: %s, %d carrier bytes for %d payload bytes",
			i+1, len(plans), p.codec.Name(), len(pkt), len(p.chunk))
	}

	flog.Infof("generated %d packets for %d bytes of data", len(res.Packets), len(data))
	return res, nil
}

// expectedReturnLength guesses a plausible size for the peer's next
// message, so callers can shape reply traffic.
func expectedReturnLength(isClient bool) int {
	if isClient {
		return 200 + rand.IntN(7800)
	}
	return 100 + rand.IntN(1900)
}

// DecryptSingleRead recovers the chunk hidden in one packet. isClient
// states the role that encoded the packet: true means request-shaped.
func (r *Rainbow) DecryptSingleRead(pkt []byte, packetIndex int, isClient bool) (*DecodeResult, error) {
	if err := packet.Validate(pkt); err != nil {
		return nil, err
	}
	if isClient == packet.IsResponse(pkt) {
		return nil, fmt.Errorf("%w: packet shape does not match %s role",
			stego.ErrCorruptPacket, roleFor(isClient))
	}

	header, body, err := packet.Split(pkt)
	if err != nil {
		return nil, err
	}

	info, tagErr := packet.ExtractInfo(header)
	if tagErr == nil {
		return r.decodeTagged(info, body)
	}

	flog.Debugf("packet %d carries no tag, sniffing", packetIndex)
	return r.decodeSniffed(header, body, packetIndex, roleFor(isClient))
}

func (r *Rainbow) decodeTagged(info *packet.Info, body []byte) (*DecodeResult, error) {
	codec, err := r.reg.ByTechnique(info.Technique)
	if err != nil {
		return nil, err
	}
	chunk, err := codec.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.Name(), err)
	}
	if len(chunk) != info.Length {
		return nil, fmt.Errorf("%w: %s recovered %d bytes, tag says %d",
			stego.ErrCorruptPacket, codec.Name(), len(chunk), info.Length)
	}
	flog.Debugf("decoded %d bytes from packet %d/%d via %s",
		len(chunk), info.Index+1, info.Total, codec.Name())
	return &DecodeResult{
		Data:                 chunk,
		Index:                info.Index,
		Total:                info.Total,
		ExpectedReturnLength: info.ExpectedReturn,
		IsReadEnd:            info.Index+1 >= info.Total,
		Compressed:           info.Flags&packet.FlagZstd != 0,
		Cover:                info.Flags&packet.FlagCover != 0,
	}, nil
}

// decodeSniffed tries role-compatible codecs in catalog priority order,
// narrowed by Content-Type when the header names a registered MIME
// type.
func (r *Rainbow) decodeSniffed(header string, body []byte, packetIndex int, role stego.Role) (*DecodeResult, error) {
	candidates := r.reg.Compatible(role)
	if mime := packet.ContentType(header); mime != "" {
		if narrowed, err := r.reg.ByMIME(mime, role); err == nil {
			candidates = narrowed
		}
	}

	for _, codec := range candidates {
		chunk, err := codec.Decode(body)
		if err != nil {
			continue
		}
		flog.Debugf("sniffed packet %d as %s, %d bytes", packetIndex, codec.Name(), len(chunk))
		return &DecodeResult{Data: chunk, Index: packetIndex}, nil
	}
	return nil, fmt.Errorf("%w: %d candidate codecs rejected the body", stego.ErrUndecodable, len(candidates))
}

// Reassemble orders decoded chunks by index and concatenates them back
// into the original payload, reversing compression when flagged.
func Reassemble(results []*DecodeResult) ([]byte, error) {
	sorted := make([]*DecodeResult, 0, len(results))
	for _, res := range results {
		if !res.Cover {
			sorted = append(sorted, res)
		}
	}
	if len(sorted) == 0 {
		return nil, errors.New("nothing to reassemble")
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var payload []byte
	compressed := false
	for i, res := range sorted {
		if res.Index != i {
			return nil, fmt.Errorf("missing packet index %d", i)
		}
		if res.Total > 0 && res.Total != len(sorted) {
			return nil, fmt.Errorf("have %d packets, transmission has %d", len(sorted), res.Total)
		}
		payload = append(payload, res.Data...)
		compressed = compressed || res.Compressed
	}

	if compressed {
		return decompressPayload(payload)
	}
	return payload, nil
}

func compressPayload(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressPayload(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
