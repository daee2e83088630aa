package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_Collapse(t *testing.T) {
	q := NewQueue[string]()

	q.AddWithKey("event#1", "created")
	q.Add("other")
	q.AddWithKey("event#1", "edited")
	q.AddWithKey("event#2", "joined")
	assert.Equal(t, 3, q.Len())

	var got []string
	for item, ok := q.Remove(); ok; item, ok = q.Remove() {
		got = append(got, item)
	}
	assert.Equal(t, []string{"other", "edited", "joined"}, got)
}

func TestQueue_Cancel(t *testing.T) {
	q := NewQueue[int]()
	q.AddWithKey("a", 1)
	q.AddWithKey("b", 2)

	assert.True(t, q.Cancel("a"))
	assert.False(t, q.Cancel("a"))

	item, ok := q.Remove()
	assert.True(t, ok)
	assert.Equal(t, 2, item)

	_, ok = q.Remove()
	assert.False(t, ok)
}
