package rainbow

import (
	crand "crypto/rand"
	"fmt"

	"rainbow/internal/packet"
	"rainbow/internal/stego"
)

// coverTechnique carries cover traffic. JSON bodies scale smoothly
// with chunk size, which makes the length search converge.
const coverTechnique = "json_metadata"

// GenerateCoverPacket builds a packet of approximately targetLen bytes
// whose hidden chunk is random filler. The tag marks it as cover so
// receivers decode and discard it. Targets smaller than an empty
// packet yield the minimal packet instead.
func (r *Rainbow) GenerateCoverPacket(targetLen int, isClient bool) ([]byte, error) {
	codec, err := r.reg.ByTechnique(coverTechnique)
	if err != nil {
		return nil, err
	}

	role := roleFor(isClient)
	maxChunk := codec.Capacity(role)
	if maxChunk > r.chunkCeiling {
		maxChunk = r.chunkCeiling
	}

	// Binary search for the largest chunk that stays under the target.
	// Header randomness shifts lengths by a few bytes between builds,
	// which the padding pass absorbs.
	best, err := r.buildCover(codec, 0, isClient)
	if err != nil {
		return nil, err
	}
	lo, hi := 0, maxChunk
	for lo < hi {
		mid := (lo + hi + 1) / 2
		pkt, err := r.buildCover(codec, mid, isClient)
		if err != nil {
			return nil, err
		}
		if len(pkt) <= targetLen {
			best = pkt
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	if gap := targetLen - len(best); gap > 0 {
		best = packet.AddPadding(best, gap)
	}
	return best, nil
}

func (r *Rainbow) buildCover(codec stego.Codec, chunkLen int, isClient bool) ([]byte, error) {
	junk := make([]byte, chunkLen)
	if _, err := crand.Read(junk); err != nil {
		return nil, err
	}

	body, err := codec.Encode(junk)
	if err != nil {
		return nil, fmt.Errorf("encode cover chunk: %w", err)
	}

	info := packet.NewInfo(0, 1, chunkLen, codec.Name(), packet.FlagCover)
	info.ExpectedReturn = expectedReturnLength(isClient)
	if isClient {
		return packet.BuildRequest(body, codec.MIMEType(), info)
	}
	return packet.BuildResponse(body, codec.MIMEType(), info)
}
