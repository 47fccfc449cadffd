package disruptorq

import "runtime"

// WaitStrategy is invoked once per failed poll of a stamp or of the
// min-reader-sequence query. It must return promptly: the ordering
// guarantee is carried entirely by the atomic being re-polled by the
// caller, never by the strategy itself.
type WaitStrategy interface {
	Wait(spins uint64)
}

// BusySpin never yields. It matches the bare spin loop in the original
// disruptor_queue implementation exactly and is the default strategy.
type BusySpin struct{}

// Wait implements WaitStrategy.
func (BusySpin) Wait(uint64) {}

// GoschedSpin calls runtime.Gosched every Every-th spin, trading a little
// latency for fairness toward other goroutines under contention.
type GoschedSpin struct {
	Every uint64
}

// Wait implements WaitStrategy.
func (g GoschedSpin) Wait(spins uint64) {
	every := g.Every
	if every == 0 {
		every = goschedEvery
	}
	if spins%every == 0 {
		runtime.Gosched()
	}
}

// goschedEvery mirrors the teacher's default throttle for runtime.Gosched
// in hot spin loops: yielding on every spin would thrash the scheduler.
const goschedEvery = 64
