package utils

import (
	"sync"
)

// Queue is a concurrent FIFO where keyed items collapse into the latest one.
type Queue[T any] struct {
	lhm *LinkedHashMap[T]
	m   sync.Mutex
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		lhm: NewLinkedHashMap[T](),
	}
}

func (q *Queue[T]) Add(item T) {
	defer q.m.Unlock()
	q.m.Lock()
	q.lhm.PushBack(item)
}

func (q *Queue[T]) AddWithKey(key string, item T) {
	defer q.m.Unlock()
	q.m.Lock()
	if key != "" {
		q.lhm.PushBackWithCollapseKey(key, item)
	} else {
		q.lhm.PushBack(item)
	}
}

// Cancel drops the pending item with key, if any.
func (q *Queue[T]) Cancel(key string) bool {
	defer q.m.Unlock()
	q.m.Lock()
	_, ok := q.lhm.RemoveWithCollapseKey(key)
	return ok
}

func (q *Queue[T]) Remove() (T, bool) {
	defer q.m.Unlock()
	q.m.Lock()
	return q.lhm.PopFront()
}

func (q *Queue[T]) Len() int {
	defer q.m.Unlock()
	q.m.Lock()
	return q.lhm.Len()
}
