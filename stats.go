package disruptorq

import "sync/atomic"

// WriterStats is a snapshot of one writer's lifetime counters, grounded
// on the teacher package's TaskQStats. Collecting a snapshot never
// touches the hot path's ordering atomics; it reads independent
// diagnostic counters.
type WriterStats struct {
	Claims    uint64
	WrapSpins uint64
}

// ReaderStats is a snapshot of one reader's lifetime counters.
type ReaderStats struct {
	Reads     uint64
	WaitSpins uint64
}

// Stats returns a snapshot of this writer's diagnostic counters.
func (w *Writer[T]) Stats() WriterStats {
	return WriterStats{
		Claims:    atomic.LoadUint64(&w.claims),
		WrapSpins: atomic.LoadUint64(&w.wrapSpins),
	}
}

// Stats returns a snapshot of this reader's diagnostic counters.
func (rd *Reader[T]) Stats() ReaderStats {
	return ReaderStats{
		Reads:     atomic.LoadUint64(&rd.reads),
		WaitSpins: atomic.LoadUint64(&rd.waitSpins),
	}
}
