package disruptorq

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Reader independently observes every sequence published to its ring, in
// strictly increasing order, at its own pace. A Reader's observed_seq
// begins at -1 and only ever advances by one per successful read; there
// is no other state.
//
// A Reader must be driven by a single goroutine at a time: Read and
// ReadInto are not safe for concurrent use from multiple goroutines on
// the same Reader handle, since advancing observed_seq is the
// synchronization point writers rely on for backpressure. Obtain a
// Reader from Ring.CreateReader; use multiple Readers for fan-out.
type Reader[T any] struct {
	_           [64]byte
	ring        *Ring[T]
	id          uuid.UUID
	observedSeq atomic.Int64
	reads       uint64
	waitSpins   uint64
	_           [64]byte
}

// ID returns this reader's setup-time identity, useful only for
// diagnostic logging; it has no bearing on the sequencing protocol.
func (rd *Reader[T]) ID() uuid.UUID {
	return rd.id
}

// Read returns the next value in publication order, by value. It spins
// until that sequence has been published; a permanently idle writer
// causes Read to spin forever, by design.
func (rd *Reader[T]) Read() T {
	next, idx := rd.nextSequence()
	rd.waitForData(idx, next)
	value := rd.ring.buffer[idx]
	rd.advance(next)
	return value
}

// ReadInto writes the next value in publication order into out, which
// the caller owns. It spins on the same terms as Read.
func (rd *Reader[T]) ReadInto(out *T) {
	next, idx := rd.nextSequence()
	rd.waitForData(idx, next)
	*out = rd.ring.buffer[idx]
	rd.advance(next)
}

// nextSequence computes the next sequence this reader wants and the
// slot index it maps to. A relaxed load is sufficient: the reader is the
// sole writer of its own observed_seq.
func (rd *Reader[T]) nextSequence() (int64, int64) {
	next := rd.observedSeq.Load() + 1
	return next, rd.ring.indexFromSequence(next)
}

// waitForData spins until the slot's stamp equals next exactly. Equality
// rather than >= is required: a larger stamp would mean the slot has
// wrapped past this reader, which the writer-side wrap check guarantees
// never happens for a live reader, but an equality predicate keeps the
// protocol single-meaning.
func (rd *Reader[T]) waitForData(idx, next int64) {
	var spins uint64
	for rd.ring.stamps[idx].Load() != next {
		spins++
		atomic.AddUint64(&rd.waitSpins, 1)
		rd.ring.wait.Wait(spins)
	}
}

// advance release-stores the newly observed sequence. The release
// benefits writers consulting the ring's min-reader-sequence query: if a
// writer sees next as the minimum, it also sees that the slot is free.
func (rd *Reader[T]) advance(next int64) {
	atomic.AddUint64(&rd.reads, 1)
	rd.observedSeq.Store(next)
}
