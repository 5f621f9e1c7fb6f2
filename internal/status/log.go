package status

import (
	"class-seat-monitor/internal/models"
	"sync"
)

// Listener is called with every recorded entry, after the entry is stored.
type Listener func(models.StatusEntry)

// Log is an append-only, chronologically ordered record of outcomes.
type Log struct {
	mu         sync.RWMutex
	entries    []models.StatusEntry
	maxEntries int
	listeners  []Listener
}

// NewLog creates a status log. maxEntries > 0 evicts the oldest entries
// beyond that count; zero keeps everything.
func NewLog(maxEntries int) *Log {
	return &Log{maxEntries: maxEntries}
}

// Record appends entry and notifies listeners.
func (l *Log) Record(entry models.StatusEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		drop := len(l.entries) - l.maxEntries
		l.entries = append(l.entries[:0:0], l.entries[drop:]...)
	}
	listeners := l.listeners
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
}

// Entries returns a snapshot copy of the log.
func (l *Log) Entries() []models.StatusEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]models.StatusEntry, len(l.entries))
	copy(copied, l.entries)
	return copied
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Subscribe registers fn for future entries.
func (l *Log) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// copy so Record can iterate its snapshot without holding the lock
	l.listeners = append(l.listeners[:len(l.listeners):len(l.listeners)], fn)
}

// Clear drops all stored entries. Listeners stay registered.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
