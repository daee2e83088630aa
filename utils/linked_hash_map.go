package utils

import "container/list"

// LinkedHashMap is an ordered list whose items may carry a collapse key.
// Pushing with a key already present replaces that item.
type LinkedHashMap[T any] struct {
	items        *list.List
	mapKeyToItem map[string]*list.Element
	mapItemToKey map[*list.Element]string
}

func NewLinkedHashMap[T any]() *LinkedHashMap[T] {
	return &LinkedHashMap[T]{
		items:        list.New(),
		mapKeyToItem: make(map[string]*list.Element),
		mapItemToKey: make(map[*list.Element]string),
	}
}

func (l *LinkedHashMap[T]) Len() int {
	return l.items.Len()
}

func (l *LinkedHashMap[T]) PushBack(value T) {
	l.items.PushBack(value)
}

func (l *LinkedHashMap[T]) PushBackWithCollapseKey(key string, value T) {

	if listItem, exist := l.mapKeyToItem[key]; exist {
		listItem.Value = value
		l.items.MoveToBack(listItem)
		return
	}

	listItem := l.items.PushBack(value)
	l.mapKeyToItem[key] = listItem
	l.mapItemToKey[listItem] = key
}

func (l *LinkedHashMap[T]) RemoveWithCollapseKey(key string) (T, bool) {
	var zero T
	listItem, exist := l.mapKeyToItem[key]
	if !exist {
		return zero, false
	}
	return l.remove(listItem), true
}

// PopFront removes and returns the oldest item.
func (l *LinkedHashMap[T]) PopFront() (T, bool) {
	var zero T
	front := l.items.Front()
	if front == nil {
		return zero, false
	}
	return l.remove(front), true
}

func (l *LinkedHashMap[T]) remove(e *list.Element) T {
	if key, exist := l.mapItemToKey[e]; exist {
		delete(l.mapKeyToItem, key)
		delete(l.mapItemToKey, e)
	}
	return l.items.Remove(e).(T)
}
