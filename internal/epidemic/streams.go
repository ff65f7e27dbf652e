package epidemic

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/iti/rngstream"
)

// Moduli of the two MRG32k3a components behind rngstream. Package seeds
// must be below them and not all zero.
const (
	mrgModulus1 = 4294967087
	mrgModulus2 = 4294944443
)

// streamMu serializes rngstream.New, which reads and advances a
// package-level seed.
var streamMu sync.Mutex

// streamSet holds one rngstream per individual, created in id order from
// a seed drawn off the stepper's source. Each simulated day uses the next
// substream of every susceptible individual's stream.
type streamSet struct {
	next    []uint64 // package seed of the next stream to create
	streams []*rngstream.RngStream
}

func newStreamSet(rng *rand.Rand) *streamSet {
	seed := make([]uint64, 6)
	for i := range seed {
		m := uint64(mrgModulus1)
		if i >= 3 {
			m = mrgModulus2
		}
		seed[i] = 1 + rng.Uint64N(m-1)
	}
	return &streamSet{next: seed}
}

// grow creates streams up to id n-1. Streams made by separate calls are
// the same as if all had been made at once.
func (ss *streamSet) grow(n int) {
	if n <= len(ss.streams) {
		return
	}

	streamMu.Lock()
	defer streamMu.Unlock()

	rngstream.SetPackageSeed(ss.next)
	for i := len(ss.streams); i < n; i++ {
		ss.streams = append(ss.streams, rngstream.New("individual-"+strconv.Itoa(i)))
	}
	// A stream that is never drawn from; its start is where the next one begins.
	ss.next = rngstream.New("").GetState()
}

// day moves individual id's stream to its next substream and returns it.
func (ss *streamSet) day(id int) *rngstream.RngStream {
	st := ss.streams[id]
	st.ResetNextSubstream()
	return st
}
