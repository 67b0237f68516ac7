package sim

import "container/heap"

// queuedAction pairs an action with the order it was scheduled in.
type queuedAction struct {
	action  Action
	ordinal uint64
}

// ActionQueue is a priority queue of pending actions with deterministic
// ordering: timestamp first, then scheduling order (FIFO among ties).
type ActionQueue struct {
	items []queuedAction
	next  uint64
}

// NewActionQueue creates an empty queue.
func NewActionQueue() *ActionQueue {
	q := &ActionQueue{items: make([]queuedAction, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *ActionQueue) Len() int { return len(q.items) }

// Less implements heap.Interface
func (q *ActionQueue) Less(i, j int) bool {
	ti, tj := q.items[i].action.Timestamp(), q.items[j].action.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return q.items[i].ordinal < q.items[j].ordinal
}

// Swap implements heap.Interface
func (q *ActionQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push implements heap.Interface
func (q *ActionQueue) Push(x any) {
	q.items = append(q.items, x.(queuedAction))
}

// Pop implements heap.Interface
func (q *ActionQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[0 : n-1]
	return item
}

// Schedule adds an action behind every queued action with the same timestamp.
func (q *ActionQueue) Schedule(a Action) {
	heap.Push(q, queuedAction{action: a, ordinal: q.next})
	q.next++
}

// PopNext removes and returns the earliest action, or nil when empty.
func (q *ActionQueue) PopNext() Action {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(queuedAction).action
}

// Peek returns the earliest action without removing it.
func (q *ActionQueue) Peek() Action {
	if q.Len() == 0 {
		return nil
	}
	return q.items[0].action
}
