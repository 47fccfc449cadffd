package disruptorq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRingRejectsInvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1, 3, 100} {
		_, err := NewRing[int](c)
		require.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d should be rejected", c)
	}
}

func TestMustNewRingPanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid capacity")
		}
	}()
	MustNewRing[int](3)
}

func TestRingCapacity(t *testing.T) {
	r := MustNewRing[int](64)
	require.Equal(t, 64, r.Capacity())
}

func TestMinReaderSeqWithNoReaders(t *testing.T) {
	r := MustNewRing[int](16)
	require.Equal(t, int64(math.MaxInt64), r.minReaderSeq())
}

func TestMinReaderSeqTracksSlowestReader(t *testing.T) {
	r := MustNewRing[int](16)
	a := r.CreateReader()
	b := r.CreateReader()

	a.observedSeq.Store(5)
	b.observedSeq.Store(2)

	require.Equal(t, int64(2), r.minReaderSeq())
}

func TestCreateWriterAndReaderReturnDistinctHandles(t *testing.T) {
	r := MustNewRing[int](16)
	w1 := r.CreateWriter()
	w2 := r.CreateWriter()
	require.NotSame(t, w1, w2)

	rd1 := r.CreateReader()
	rd2 := r.CreateReader()
	require.NotSame(t, rd1, rd2)
	require.NotEqual(t, rd1.ID(), rd2.ID())
}

func TestFreezeDoesNotBlockLateRegistration(t *testing.T) {
	r := MustNewRing[int](16)
	r.Freeze()

	// Per the spec's open-question resolution, late registration is
	// documented-unsafe, not rejected outright.
	w := r.CreateWriter()
	require.NotNil(t, w)
	rd := r.CreateReader()
	require.NotNil(t, rd)
	require.Equal(t, int64(-1), rd.observedSeq.Load())
}
