package rainbow

import (
	"math/rand/v2"
	"sync"

	"rainbow/internal/stego"
)

// selector picks a codec per chunk. Selection is content-blind so the
// technique sequence leaks nothing about payload structure. The source
// is injectable so tests can pin the sequence.
type selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newSelector(src rand.Source) *selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &selector{rnd: rand.New(src)}
}

func (s *selector) pick(codecs []stego.Codec) stego.Codec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codecs[s.rnd.IntN(len(codecs))]
}
