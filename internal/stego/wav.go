package stego

import (
	"encoding/binary"
	"fmt"
)

// WAVCodec hides data in PCM sample amplitudes inside a structurally
// valid WAV container. A fixed alternating-amplitude preamble marks the
// start of data; after it, every 16-bit sample carries one payload byte
// in its low-order byte while the high-order byte follows a low-volume
// sine table, so the file still looks like a waveform. Both roles:
// audio uploads and responses are equally plausible.
type WAVCodec struct {
	sampleRate uint32
}

const (
	wavCapacity      = 2048
	wavPreambleLen   = 64
	wavPreambleAmp   = 28000
	wavHeaderSize    = 44
	wavBitsPerSample = 16
)

// carrierWave is one period of a quantized sine, used for the
// information-free high byte of each data sample.
var carrierWave = [16]int8{0, 6, 11, 14, 16, 14, 11, 6, 0, -6, -11, -14, -16, -14, -11, -6}

func NewWAVCodec() *WAVCodec {
	return &WAVCodec{sampleRate: 8000}
}

func (c *WAVCodec) Name() string     { return "wav_audio" }
func (c *WAVCodec) MIMEType() string { return "audio/wav" }

func (c *WAVCodec) Capacity(role Role) int { return wavCapacity }

func (c *WAVCodec) Encode(chunk []byte) ([]byte, error) {
	checkCapacity(c.Name(), chunk, wavCapacity)

	sampleCount := wavPreambleLen + len(chunk)
	dataSize := sampleCount * 2
	buf := make([]byte, wavHeaderSize+dataSize)

	// RIFF container header.
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	// fmt chunk: PCM, mono, 16-bit.
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], c.sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], c.sampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], wavBitsPerSample)

	// data chunk.
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	pos := wavHeaderSize
	for i := 0; i < wavPreambleLen; i++ {
		amp := int16(wavPreambleAmp)
		if i%2 == 1 {
			amp = -amp
		}
		binary.LittleEndian.PutUint16(buf[pos:], uint16(amp))
		pos += 2
	}
	for i, byt := range chunk {
		sample := uint16(uint8(carrierWave[i%len(carrierWave)]))<<8 | uint16(byt)
		binary.LittleEndian.PutUint16(buf[pos:], sample)
		pos += 2
	}

	return buf, nil
}

func (c *WAVCodec) Decode(body []byte) ([]byte, error) {
	if len(body) < wavHeaderSize {
		return nil, fmt.Errorf("%w: short WAV container", ErrCorruptPacket)
	}
	if string(body[0:4]) != "RIFF" || string(body[8:12]) != "WAVE" || string(body[12:16]) != "fmt " || string(body[36:40]) != "data" {
		return nil, fmt.Errorf("%w: malformed WAV chunk layout", ErrCorruptPacket)
	}
	if binary.LittleEndian.Uint16(body[20:22]) != 1 || binary.LittleEndian.Uint16(body[34:36]) != wavBitsPerSample {
		return nil, fmt.Errorf("%w: unexpected WAV sample format", ErrCorruptPacket)
	}

	dataSize := int(binary.LittleEndian.Uint32(body[40:44]))
	if dataSize%2 != 0 || wavHeaderSize+dataSize > len(body) || dataSize/2 < wavPreambleLen {
		return nil, fmt.Errorf("%w: WAV data chunk size mismatch", ErrCorruptPacket)
	}

	pos := wavHeaderSize
	for i := 0; i < wavPreambleLen; i++ {
		want := int16(wavPreambleAmp)
		if i%2 == 1 {
			want = -want
		}
		if int16(binary.LittleEndian.Uint16(body[pos:])) != want {
			return nil, fmt.Errorf("%w: preamble mismatch at sample %d", ErrCorruptPacket, i)
		}
		pos += 2
	}

	chunk := make([]byte, 0, dataSize/2-wavPreambleLen)
	for pos < wavHeaderSize+dataSize {
		chunk = append(chunk, body[pos])
		pos += 2
	}
	return chunk, nil
}
