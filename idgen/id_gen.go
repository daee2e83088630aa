// Package idgen generates 64-bit ids ordered by creation time.
package idgen

import (
	"sync"
	"time"
)

const epoch int64 = 1704067200000 // Milliseconds since 1 Jan 2024 00:00 UTC

const (
	timeBits      = 41
	generatorBits = 12
	sequenceBits  = 10
	maxSequence   = 1 << sequenceBits
)

var defaultGenerator = New(1)

// NewID returns an id from the process-wide generator.
func NewID() int64 {
	return defaultGenerator.NextID()
}

// SetDefaultGeneratorID changes the generator id used by NewID. Processes
// sharing a database must use different ids.
func SetDefaultGeneratorID(id uint16) {
	defaultGenerator.mu.Lock()
	defaultGenerator.id = id % (1 << generatorBits)
	defaultGenerator.mu.Unlock()
}

/*
  Generator produces positive ids where the 41 bits after the sign bit
  are the milliseconds since epoch, the next 12 bits identify the generator and the
  last 10 bits are a per-millisecond sequence. Up to 1024 ids per
  millisecond; the generator waits for the next millisecond beyond that.
*/
type Generator struct {
	mu       sync.Mutex
	id       uint16
	sequence uint16
	lastTime time.Time
	now      func() time.Time
}

func New(id uint16) *Generator {
	return &Generator{id: id % (1 << generatorBits), now: func() time.Time { return time.Now().UTC() }}
}

func (g *Generator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	currTime := g.now()

	if currTime.Sub(g.lastTime) < time.Millisecond {
		g.sequence = (g.sequence + 1) % maxSequence
		if g.sequence == 0 {
			currTime = g.waitTillNextMillisecond()
		}
	} else {
		g.sequence = 0
	}

	currTimeMs := currTime.UnixNano()/int64(time.Millisecond) - epoch

	newID := currTimeMs << (generatorBits + sequenceBits)
	newID |= int64(g.id) << sequenceBits
	newID |= int64(g.sequence)

	g.lastTime = currTime

	return newID
}

// waitTillNextMillisecond is not affected by leap seconds because it only
// compares against the last generated time.
func (g *Generator) waitTillNextMillisecond() time.Time {
	currTime := g.now()
	for currTime.Sub(g.lastTime) < time.Millisecond {
		time.Sleep(100 * time.Microsecond)
		currTime = g.now()
	}
	return currTime
}

// CreatedAt recovers the creation time of an id.
func CreatedAt(id int64) time.Time {
	ms := id >> (generatorBits + sequenceBits)
	return time.UnixMilli(ms + epoch).UTC()
}
