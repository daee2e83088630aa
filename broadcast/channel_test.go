package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleCounter struct {
	setups    atomic.Int32
	teardowns atomic.Int32
}

func (l *lifecycleCounter) option() Option {
	return WithLifecycle(
		func() { l.setups.Add(1) },
		func() { l.teardowns.Add(1) },
	)
}

func TestChannel_RefCounting(t *testing.T) {
	var lc lifecycleCounter
	ch := New[int](lc.option())

	s1 := ch.Subscribe(func(int) {})
	assert.EqualValues(t, 1, lc.setups.Load())
	assert.True(t, ch.Active())

	s2 := ch.Subscribe(func(int) {})
	assert.EqualValues(t, 1, lc.setups.Load())
	assert.Equal(t, 2, ch.Subscribers())

	s1.Dispose()
	assert.EqualValues(t, 0, lc.teardowns.Load())

	s2.Dispose()
	s2.Dispose()
	assert.EqualValues(t, 1, lc.teardowns.Load())
	assert.Equal(t, 0, ch.Subscribers())
	assert.False(t, ch.Active())

	s3 := ch.Subscribe(func(int) {})
	assert.EqualValues(t, 2, lc.setups.Load())
	s3.Dispose()
	assert.EqualValues(t, 2, lc.teardowns.Load())
}

func TestChannel_ConcurrentSubscribers(t *testing.T) {
	var lc lifecycleCounter
	ch := New[int](lc.option())

	// Keep one subscriber so the channel stays active while others churn.
	anchor := ch.Subscribe(func(int) {})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := ch.Subscribe(func(int) {})
				ch.Publish(j)
				s.Dispose()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, lc.setups.Load())
	assert.EqualValues(t, 0, lc.teardowns.Load())
	assert.Equal(t, 1, ch.Subscribers())

	anchor.Dispose()
	assert.EqualValues(t, 1, lc.teardowns.Load())
}

func TestChannel_ConcurrentCycles(t *testing.T) {
	var lc lifecycleCounter
	ch := New[int](lc.option())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ch.Subscribe(func(int) {}).Dispose()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, ch.Subscribers())
	assert.False(t, ch.Active())
	assert.Equal(t, lc.setups.Load(), lc.teardowns.Load())
}

func TestChannel_PublishOrder(t *testing.T) {
	ch := New[string]()

	var got []string
	ch.Subscribe(func(m string) { got = append(got, "first:"+m) })
	ch.Subscribe(func(m string) { got = append(got, "second:"+m) })

	ch.Publish("a")
	ch.Publish("b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestChannel_ObserverFault(t *testing.T) {
	var faults []*ObserverFault
	boom := errors.New("boom")
	ch := New[int](WithName("faulty"), WithFaultHandler(func(f *ObserverFault) {
		faults = append(faults, f)
	}))

	var delivered []int
	bad := ch.Subscribe(func(int) { panic(boom) })
	ch.Subscribe(func(v int) { delivered = append(delivered, v) })

	ch.Publish(1)
	ch.Publish(2)

	assert.Equal(t, []int{1, 2}, delivered)
	require.Len(t, faults, 2)
	assert.Equal(t, bad.ID(), faults[0].SubscriptionID)
	assert.ErrorIs(t, faults[0], boom)
	assert.Equal(t, 2, ch.Subscribers())
}

func TestChannel_Replay(t *testing.T) {
	ch := New[int](WithReplay(1))

	ch.Publish(1)
	ch.Publish(2)

	var got []int
	s := ch.Subscribe(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{2}, got)

	ch.Publish(3)
	assert.Equal(t, []int{2, 3}, got)
	s.Dispose()

	got = nil
	ch.Subscribe(func(v int) { got = append(got, v) })
	assert.Empty(t, got, "replay buffer is released with the activation cycle")
}

func TestChannel_NoReplay(t *testing.T) {
	ch := New[int](WithReplay(0))
	ch.Publish(1)

	var got []int
	ch.Subscribe(func(v int) { got = append(got, v) })
	assert.Empty(t, got)
}

func TestChannel_DisposeDuringPublish(t *testing.T) {
	ch := New[int]()

	var second []int
	var s2 *Subscription[int]
	ch.Subscribe(func(int) { s2.Dispose() })
	s2 = ch.Subscribe(func(v int) { second = append(second, v) })

	ch.Publish(1)
	ch.Publish(2)

	assert.Empty(t, second)
	assert.Equal(t, 1, ch.Subscribers())
}
