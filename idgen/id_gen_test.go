package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDGenerator(t *testing.T) {

	hash := make(map[int64]bool)
	gen := New(1)

	for i := 0; i < 40000; i++ {
		newID := gen.NextID()

		if _, ok := hash[newID]; ok {
			t.Fatal("The generated ID", newID, "already exists on iteration", i)
		}
		if newID <= 0 {
			t.Fatal("The generated ID", newID, "is not positive")
		}

		hash[newID] = true
	}
}

func TestIDGenerator_Concurrent(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				id := NewID()
				mu.Lock()
				assert.False(t, seen[id])
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 16000)
}

func TestCreatedAt(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 8000000, time.UTC)
	gen := New(7)
	gen.now = func() time.Time { return fixed }

	id := gen.NextID()
	assert.True(t, fixed.Equal(CreatedAt(id)), "got %v", CreatedAt(id))
}
