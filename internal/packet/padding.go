package packet

import "math/rand/v2"

const paddingOverhead = len("X-Padding: \r\n")

const paddingAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AddPadding grows a packet by exactly n bytes by inserting a junk
// header before the blank line. Packets that cannot fit the header
// syntax in n bytes are returned unchanged.
func AddPadding(pkt []byte, n int) []byte {
	if n < paddingOverhead {
		return pkt
	}
	pos := findCRLFCRLF(pkt)
	if pos < 0 {
		return pkt
	}

	value := make([]byte, n-paddingOverhead)
	for i := range value {
		value[i] = paddingAlphabet[rand.IntN(len(paddingAlphabet))]
	}

	padded := make([]byte, 0, len(pkt)+n)
	padded = append(padded, pkt[:pos+2]...)
	padded = append(padded, "X-Padding: "...)
	padded = append(padded, value...)
	padded = append(padded, "\r\n"...)
	padded = append(padded, pkt[pos+2:]...)
	return padded
}
