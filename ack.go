package disruptorq

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrAckTimeout is returned by AckWriter.WriteAwait when ctx is done
// before every tracked reader has observed the published sequence.
var ErrAckTimeout = errors.New("disruptorq: ack wait timed out")

// AckWriter wraps a Writer with a synchronous, cancellable publish: it
// is the layered-on-top cancellation the core's design notes call for
// (the core itself is infallible and has no timeout of its own). It
// spins on the same ring's min-reader-sequence query the core's wrap
// check already uses, so WriteAwait adds no new synchronization
// primitive, only a context-aware exit from the spin.
//
// Grounded on the teacher package's TaskQ.Do, which claims a slot,
// publishes, and then selects between a completion signal and
// ctx.Done(); AckWriter replaces the private per-request channel with
// the ring's existing broadcast backpressure signal, since every reader
// (not one private consumer) must observe the sequence before it counts
// as acknowledged.
type AckWriter[T any] struct {
	w *Writer[T]

	attempts uint64
	timeouts uint64
	acked    uint64
}

// NewAckWriter wraps an existing Writer. The Writer must belong to the
// same Ring whose readers WriteAwait will wait on.
func NewAckWriter[T any](w *Writer[T]) *AckWriter[T] {
	return &AckWriter[T]{w: w}
}

// AckWriterStats is a snapshot of an AckWriter's lifetime counters,
// grounded on the teacher package's TaskQStats.
type AckWriterStats struct {
	Attempts uint64
	Timeouts uint64
	Acked    uint64
}

// Stats returns a snapshot of this AckWriter's diagnostic counters.
func (a *AckWriter[T]) Stats() AckWriterStats {
	return AckWriterStats{
		Attempts: atomic.LoadUint64(&a.attempts),
		Timeouts: atomic.LoadUint64(&a.timeouts),
		Acked:    atomic.LoadUint64(&a.acked),
	}
}

// WriteAwait publishes value and blocks until every reader registered on
// the ring has observed it, or until ctx is done. The reader set is
// re-read on every poll, so a reader registered while WriteAwait is
// waiting must also observe the value before it counts as acked. It
// returns ctx.Err() wrapped in ErrAckTimeout on cancellation; the value
// has already been published either way, since the core's Write is
// infallible and cannot be unwound.
func (a *AckWriter[T]) WriteAwait(ctx context.Context, value T) error {
	atomic.AddUint64(&a.attempts, 1)

	seq := a.w.claim()
	idx := a.w.ring.indexFromSequence(seq)
	a.w.ring.buffer[idx] = value
	a.w.publish(idx, seq)

	var spins uint64
	for {
		if a.w.ring.minReaderSeq() >= seq {
			atomic.AddUint64(&a.acked, 1)
			return nil
		}
		select {
		case <-ctx.Done():
			atomic.AddUint64(&a.timeouts, 1)
			return errors.Join(ErrAckTimeout, ctx.Err())
		default:
		}
		spins++
		a.w.ring.wait.Wait(spins)
	}
}
