package disruptorq

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// initialSequence is the sentinel stamp meaning "this slot has never been
// published" and the starting value of every reader's observed sequence.
const initialSequence int64 = -1

// ErrInvalidCapacity is returned by NewRing when capacity is not a
// strictly positive power of two.
var ErrInvalidCapacity = errors.New("disruptorq: capacity must be a positive power of two")

// Ring is the shared state of a bounded, lock-free, multi-producer /
// multi-consumer broadcast queue of fixed power-of-two capacity. Every
// registered reader observes every published value, in publication
// order, at its own pace; writers are held back from overwriting a slot
// until every live reader has observed it.
//
// A Ring is safe for concurrent use by any number of goroutines holding
// Writer or Reader handles obtained from it. Registration
// (CreateWriter/CreateReader) must happen during setup, before any
// writer's first claim; see Freeze.
type Ring[T any] struct {
	capacity int
	mask     int64
	wait     WaitStrategy

	buffer []T
	_      [64]byte
	stamps []atomic.Int64

	_       [64]byte
	nextSeq atomic.Int64
	_       [64]byte

	setupMu         sync.Mutex
	frozen          atomic.Bool
	readers         []*Reader[T]
	writers         []*Writer[T]
	readersSnapshot atomic.Pointer[[]*Reader[T]]
}

// Option configures a Ring at construction time.
type Option[T any] func(*Ring[T])

// WithWaitStrategy overrides the default BusySpin wait strategy used by
// both writers (waiting for the slowest reader) and readers (waiting for
// publication).
func WithWaitStrategy[T any](w WaitStrategy) Option[T] {
	return func(r *Ring[T]) { r.wait = w }
}

// NewRing creates a Ring of the given capacity, which must be a strictly
// positive power of two. All stamps are initialized to the sentinel -1
// and the claim counter starts at 0.
func NewRing[T any](capacity int, opts ...Option[T]) (*Ring[T], error) {
	if !isPowerOfTwo(capacity) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	r := &Ring[T]{
		capacity: capacity,
		mask:     indexMask(capacity),
		wait:     BusySpin{},
		buffer:   make([]T, capacity),
		stamps:   make([]atomic.Int64, capacity),
	}
	for i := range r.stamps {
		r.stamps[i].Store(initialSequence)
	}
	empty := []*Reader[T](nil)
	r.readersSnapshot.Store(&empty)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNewRing is like NewRing but panics on invalid capacity, matching
// the teacher package's panic-on-misuse constructors for call sites that
// treat a bad capacity as a programmer error rather than a recoverable
// configuration mistake.
func MustNewRing[T any](capacity int, opts ...Option[T]) *Ring[T] {
	r, err := NewRing[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Capacity returns the ring's fixed capacity, validated once by NewRing.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// Freeze marks the end of the setup phase. Registration after Freeze is
// not forbidden, since the core treats it as the implementer's
// responsibility per the source's documented contract, but it is logged
// as a warning, since a reader registered after writers have begun
// claiming sequences starts at observed_seq = -1 and may immediately
// become every writer's backpressure bottleneck.
func (r *Ring[T]) Freeze() {
	r.frozen.Store(true)
}

// CreateWriter registers a new writer against this ring and returns a
// stable handle whose lifetime is bounded by the ring's. Safe to call
// concurrently with other registrations; takes the setup lock.
func (r *Ring[T]) CreateWriter() *Writer[T] {
	w := &Writer[T]{
		ring:            r,
		id:              uuid.New(),
		cachedMinReader: initialSequence,
	}

	r.setupMu.Lock()
	r.writers = append(r.writers, w)
	hot := r.frozen.Load()
	r.setupMu.Unlock()

	if hot {
		log().Warn().Str("writer_id", w.id.String()).Msg("disruptorq: writer registered after Freeze; wrap-check correctness for already-claimed sequences is not guaranteed")
	}
	return w
}

// CreateReader registers a new reader against this ring and returns a
// stable handle whose lifetime is bounded by the ring's. Safe to call
// concurrently with other registrations; takes the setup lock.
//
// Readers must be registered before any writer performs its first claim
// for the wrap-check backpressure argument to hold; see Freeze.
func (r *Ring[T]) CreateReader() *Reader[T] {
	rd := &Reader[T]{
		ring: r,
		id:   uuid.New(),
	}
	rd.observedSeq.Store(initialSequence)

	r.setupMu.Lock()
	r.readers = append(r.readers, rd)
	snapshot := append([]*Reader[T](nil), r.readers...)
	r.readersSnapshot.Store(&snapshot)
	hot := r.frozen.Load()
	r.setupMu.Unlock()

	if hot {
		log().Warn().Str("reader_id", rd.id.String()).Msg("disruptorq: reader registered after Freeze; it starts at observed_seq=-1 and may stall writers already past sequence 0")
	}
	return rd
}

// minReaderSeq returns the minimum observed_seq across every registered
// reader, using acquire loads. With no registered readers it returns
// math.MaxInt64 so writers never block on backpressure that does not
// exist. A reader that is registered and never reads still constrains
// writers to the ring's first Capacity sequences; this is deliberate,
// matching the source this design is grounded on.
//
// This is a hot-path call, driven from every spin of a writer's
// wrap-check and of AckWriter.WriteAwait. It must not take setupMu:
// CreateReader keeps readersSnapshot up to date under the setup lock,
// and minReaderSeq only ever does a lock-free load of that snapshot,
// matching get_min_consumer_sequence in the source this design is
// grounded on, which scans _readers without taking _setup_mutex.
func (r *Ring[T]) minReaderSeq() int64 {
	readers := *r.readersSnapshot.Load()

	if len(readers) == 0 {
		return math.MaxInt64
	}

	min := int64(math.MaxInt64)
	for _, rd := range readers {
		seq := rd.observedSeq.Load()
		if seq < min {
			min = seq
		}
	}
	return min
}

// indexFromSequence maps a sequence number to its slot index.
func (r *Ring[T]) indexFromSequence(seq int64) int64 {
	return seq & r.mask
}
