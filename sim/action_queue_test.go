package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionQueue_OrdersByTimeThenFIFO(t *testing.T) {
	// GIVEN actions scheduled out of order with a three-way tie at t=5
	q := NewActionQueue()
	q.Schedule(&RequestAction{ID: 1, Quantity: 1, Time: 5})
	q.Schedule(&RestockAction{ID: 2, Quantity: 1, Time: 1})
	q.Schedule(&RequestAction{ID: 3, Quantity: 1, Time: 5})
	q.Schedule(&AdaptTickAction{Time: 5})
	q.Schedule(&RequestAction{ID: 4, Quantity: 1, Time: 2})

	// WHEN draining the queue
	var got []Action
	for q.Len() > 0 {
		got = append(got, q.PopNext())
	}

	// THEN earlier times come first and ties keep scheduling order
	require.Len(t, got, 5)
	assert.IsType(t, &RestockAction{}, got[0])
	assert.Equal(t, 4, got[1].(*RequestAction).ID)
	assert.Equal(t, 1, got[2].(*RequestAction).ID)
	assert.Equal(t, 3, got[3].(*RequestAction).ID)
	assert.IsType(t, &AdaptTickAction{}, got[4])
}

func TestActionQueue_EmptyQueue(t *testing.T) {
	q := NewActionQueue()
	assert.Nil(t, q.PopNext())
	assert.Nil(t, q.Peek())

	a := &AdaptTickAction{Time: 3}
	q.Schedule(a)
	assert.Same(t, a, q.Peek())
	assert.Equal(t, 1, q.Len())
}
