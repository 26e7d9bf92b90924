// Package session holds the in-process conversation log. Entries are
// kept only in memory for introspection and vanish on restart.
package session

import (
	"sync"
	"time"
)

const DefaultCapacity = 10

// Entry records one question/answer exchange.
type Entry struct {
	Query     string        `json:"query"`
	Answer    string        `json:"response"`
	Timestamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"processing_time"`
	Success   bool          `json:"success"`
}

// Log is a bounded ring of the most recent entries. Appends are safe
// under concurrent request handling; the oldest entry is evicted first.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	total    int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total++
	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Total counts every exchange seen since startup, including evicted
// ones.
func (l *Log) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}
