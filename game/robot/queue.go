package robot

import "container/heap"

// minQueue is a binary min-heap ordered by less. Ties must be resolved inside
// less so that pops are deterministic.
type minQueue[T any] struct {
	items []T
	less  func(a, b T) bool
}

func newMinQueue[T any](less func(a, b T) bool) *minQueue[T] {
	q := &minQueue[T]{less: less}
	heap.Init(q)
	return q
}

func (q *minQueue[T]) Len() int           { return len(q.items) }
func (q *minQueue[T]) Less(i, j int) bool { return q.less(q.items[i], q.items[j]) }
func (q *minQueue[T]) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *minQueue[T]) Push(x any) {
	q.items = append(q.items, x.(T))
}

func (q *minQueue[T]) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	q.items = old[:n-1]
	return item
}

func (q *minQueue[T]) push(item T) { heap.Push(q, item) }

func (q *minQueue[T]) pop() T { return heap.Pop(q).(T) }
