package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndEntries(t *testing.T) {
	log := NewLog(3)
	log.Append(Entry{Query: "q1", Answer: "a1", Timestamp: time.Now()})
	log.Append(Entry{Query: "q2", Answer: "a2", Timestamp: time.Now()})

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "q1", entries[0].Query)
	assert.Equal(t, "q2", entries[1].Query)
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	log := NewLog(3)
	for i := 1; i <= 5; i++ {
		log.Append(Entry{Query: fmt.Sprintf("q%d", i)})
	}

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "q3", entries[0].Query)
	assert.Equal(t, "q5", entries[2].Query)
}

func TestTotalCountsEvicted(t *testing.T) {
	log := NewLog(2)
	for i := 0; i < 7; i++ {
		log.Append(Entry{Query: "q"})
	}
	assert.Equal(t, 7, log.Total())
	assert.Len(t, log.Entries(), 2)
}

func TestDefaultCapacity(t *testing.T) {
	log := NewLog(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		log.Append(Entry{Query: "q"})
	}
	assert.Len(t, log.Entries(), DefaultCapacity)
}

func TestConcurrentAppend(t *testing.T) {
	log := NewLog(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(Entry{Query: "q"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, log.Total())
	assert.Len(t, log.Entries(), 10)
}

func TestEntriesReturnsCopy(t *testing.T) {
	log := NewLog(3)
	log.Append(Entry{Query: "original"})

	entries := log.Entries()
	entries[0].Query = "mutated"

	assert.Equal(t, "original", log.Entries()[0].Query)
}
