package eventbus

import (
	"testing"

	"github.com/colonyops/shoplist/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()

	for _, id := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(event.DeleteItem{ID: id}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, event.DeleteItem{ID: want}, got)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(event.SignOut{}))
	assert.True(t, q.Closed())

	select {
	case <-q.Wait():
	default:
		t.Fatal("closed queue should wake waiters")
	}
}

func TestQueue_SignalCoalesces(t *testing.T) {
	q := newQueue()
	q.Enqueue(event.SignOut{})
	q.Enqueue(event.SignOut{})

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one wake-up")
	default:
	}
	assert.Equal(t, 2, q.Len())
}
