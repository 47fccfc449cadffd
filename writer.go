package disruptorq

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// slowReaderLogSample logs at most once every N wrap-check spins per
// publish, so a permanently stalled reader produces occasional
// diagnostics instead of turning the busy-wait into a logging hot loop.
const slowReaderLogSample = 1 << 20

// Writer publishes values into its ring in claim order with respect to
// other writers, under backpressure from the slowest live reader. A
// Writer carries no sequence state of its own beyond a cache of the
// last-observed minimum reader sequence: all claim state lives in the
// ring's shared counter.
//
// A Writer must be driven by a single goroutine at a time: its cached
// minimum reader sequence is a plain field updated on every wrap check.
// Any number of Writers on the same ring may run concurrently, since the
// claim step is a single atomic fetch-and-add and each claimed sequence
// maps to exactly one writer. Obtain a Writer from Ring.CreateWriter.
type Writer[T any] struct {
	_               [64]byte
	ring            *Ring[T]
	id              uuid.UUID
	cachedMinReader int64
	claims          uint64
	wrapSpins       uint64
	_               [64]byte
}

// ID returns this writer's setup-time identity, useful only for
// diagnostic logging; it has no bearing on the sequencing protocol.
func (w *Writer[T]) ID() uuid.UUID {
	return w.id
}

// Write claims the next sequence, waits until it is safe to occupy the
// slot that sequence maps to, moves value into the slot, and publishes
// it. It never fails: a permanently stalled reader causes Write to spin
// forever at the wrap point, by design.
func (w *Writer[T]) Write(value T) {
	seq := w.claim()
	idx := w.ring.indexFromSequence(seq)
	w.ring.buffer[idx] = value
	w.publish(idx, seq)
}

// Emplace constructs a value via build and publishes it at the next
// claimed sequence. It is semantically identical to Write(build())
// except that the construction happens after the sequence is claimed,
// matching the original disruptor_queue's write_emplace, which
// constructs the payload in place rather than building it ahead of the
// claim.
func (w *Writer[T]) Emplace(build func() T) {
	seq := w.claim()
	idx := w.ring.indexFromSequence(seq)
	w.ring.buffer[idx] = build()
	w.publish(idx, seq)
}

// claim atomically reserves the next sequence number and blocks until
// that sequence's slot has been fully observed by every live reader.
func (w *Writer[T]) claim() int64 {
	seq := w.ring.nextSeq.Add(1) - 1
	atomic.AddUint64(&w.claims, 1)
	w.waitForNoWrap(seq)
	return seq
}

// waitForNoWrap blocks until it is safe to overwrite the slot that seq
// maps to: every live reader must have observed_seq >= seq - capacity.
func (w *Writer[T]) waitForNoWrap(seq int64) {
	wrapPoint := seq - int64(w.ring.capacity)

	if wrapPoint <= w.cachedMinReader {
		return
	}

	var spins uint64
	for {
		w.cachedMinReader = w.ring.minReaderSeq()
		if wrapPoint <= w.cachedMinReader {
			return
		}
		spins++
		atomic.AddUint64(&w.wrapSpins, 1)
		if spins%slowReaderLogSample == 0 {
			log().Debug().
				Str("writer_id", w.id.String()).
				Int64("claimed_seq", seq).
				Int64("wrap_point", wrapPoint).
				Int64("min_reader_seq", w.cachedMinReader).
				Msg("disruptorq: writer stalled waiting for slowest reader")
		}
		w.ring.wait.Wait(spins)
	}
}

// publish release-stores seq into the slot's stamp, making the payload
// at buffer[idx] visible to any reader that subsequently acquire-loads
// the stamp and sees seq.
func (w *Writer[T]) publish(idx, seq int64) {
	w.ring.stamps[idx].Store(seq)
}
