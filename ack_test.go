package disruptorq

import (
	"context"
	"testing"
	"time"
)

// Basic sanity: a single slow reader acks once it catches up.
func TestAckWriterWriteAwait(t *testing.T) {
	r := MustNewRing[int](16)
	reader := r.CreateReader()
	writer := r.CreateWriter()
	aw := NewAckWriter(writer)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- aw.WriteAwait(ctx, 42)
	}()

	// Give the writer a chance to publish before the reader catches up.
	time.Sleep(10 * time.Millisecond)

	v := reader.Read()
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}

	if err := <-done; err != nil {
		t.Fatalf("WriteAwait returned unexpected error: %v", err)
	}

	stats := aw.Stats()
	if stats.Acked != 1 {
		t.Fatalf("expected 1 acked write, got %d", stats.Acked)
	}
}

// Ack times out if no reader ever catches up.
func TestAckWriterTimeout(t *testing.T) {
	r := MustNewRing[int](16)
	_ = r.CreateReader() // registered but never reads
	writer := r.CreateWriter()
	aw := NewAckWriter(writer)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := aw.WriteAwait(ctx, 7); err == nil {
		t.Fatalf("expected timeout error, got nil")
	}

	stats := aw.Stats()
	if stats.Timeouts != 1 {
		t.Fatalf("expected 1 timeout, got %d", stats.Timeouts)
	}
}

// With no readers registered at all, ack succeeds immediately.
func TestAckWriterNoReaders(t *testing.T) {
	r := MustNewRing[int](16)
	writer := r.CreateWriter()
	aw := NewAckWriter(writer)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := aw.WriteAwait(ctx, 1); err != nil {
		t.Fatalf("expected immediate ack with no readers, got %v", err)
	}
}
