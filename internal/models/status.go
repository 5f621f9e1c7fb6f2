package models

import (
	"fmt"
	"time"
)

// StatusEntry records one outcome. Entries are never mutated once recorded.
type StatusEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Course    CourseIdentifier `json:"course"`
	Outcome   CheckOutcome     `json:"outcome"`
	Message   string           `json:"message"`
}

// NewStatusEntry stamps an outcome for course at t.
func NewStatusEntry(t time.Time, course CourseIdentifier, outcome CheckOutcome) StatusEntry {
	return StatusEntry{
		Timestamp: t,
		Course:    course,
		Outcome:   outcome,
		Message:   outcome.Describe(course),
	}
}

// String formats the entry as a status line.
func (e StatusEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.Message)
}
