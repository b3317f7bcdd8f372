package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorQueue_SequentialDrain(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	h := HandlerFunc(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Path)
		if job.Path == "b.pdf" {
			return errors.New("boom")
		}
		return nil
	})
	q := NewProcessorQueue(h, nil, WithQueueSize(8))

	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, seen)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(HandlerFunc(func(context.Context, Job) error { return nil }), nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_RecoversPanic(t *testing.T) {
	done := make(chan struct{})
	h := HandlerFunc(func(_ context.Context, job Job) error {
		if job.Path == "panic.pdf" {
			panic("bad pdf")
		}
		close(done)
		return nil
	})
	q := NewProcessorQueue(h, nil)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "panic.pdf"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "ok.pdf"}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive panic")
	}
	q.Shutdown(context.Background())
}
