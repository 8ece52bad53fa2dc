package field

import (
	"container/heap"
	"time"
)

// spawnEvent asks for a new arc leaving node once at has passed.
type spawnEvent struct {
	at   time.Time
	node int
}

// eventQueue is a min-heap of spawn events ordered by target time.
type eventQueue []spawnEvent

func (q eventQueue) Len() int           { return len(q) }
func (q eventQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q eventQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)        { *q = append(*q, x.(spawnEvent)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[:n-1]
	return ev
}

func (q *eventQueue) schedule(at time.Time, node int) {
	heap.Push(q, spawnEvent{at: at, node: node})
}

// drain appends every event due at or before now to out, earliest first.
func (q *eventQueue) drain(now time.Time, out []spawnEvent) []spawnEvent {
	for q.Len() > 0 && !(*q)[0].at.After(now) {
		out = append(out, heap.Pop(q).(spawnEvent))
	}
	return out
}

func (q *eventQueue) clear() { *q = (*q)[:0] }
