// Package model defines the core data structures for WinTheDay.
package model

import (
	"fmt"
	"time"
)

// TasksPerDay is the fixed number of critical tasks tracked each day.
const TasksPerDay = 5

// DateLayout is the calendar date format used for history keys.
const DateLayout = "2006-01-02"

// Status is the outcome of a single day.
type Status string

// Day status constants.
const (
	StatusWin        Status = "WIN"
	StatusLoss       Status = "LOSS"
	StatusInProgress Status = "IN_PROGRESS"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWin, StatusLoss, StatusInProgress:
		return true
	}
	return false
}

// Task represents one of the day's critical tasks.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// DayRecord contains the tasks and outcome for a single calendar day.
type DayRecord struct {
	Date   string `json:"date" yaml:"date"`
	Tasks  []Task `json:"tasks" yaml:"tasks"`
	Status Status `json:"status" yaml:"status"`
	Notes  string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// History maps calendar dates (YYYY-MM-DD) to day records.
type History map[string]DayRecord

// Clone returns a shallow copy of the map with copied task slices.
func (h History) Clone() History {
	out := make(History, len(h))
	for date, rec := range h {
		rec.Tasks = append([]Task(nil), rec.Tasks...)
		out[date] = rec
	}
	return out
}

// Ledger is the persisted aggregate: every recorded day plus streak counters.
type Ledger struct {
	CurrentDate string  `json:"currentDate" yaml:"currentDate"`
	History     History `json:"history" yaml:"history"`
	Streak      int     `json:"streak" yaml:"streak"`
	BestStreak  int     `json:"bestStreak" yaml:"bestStreak"`
}

// NewLedger returns an empty ledger with zero streaks.
func NewLedger() Ledger {
	return Ledger{History: History{}}
}

// FormatDate renders the calendar date of t as a history key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// Day truncates t to its calendar date, expressed as UTC midnight.
// Stepping by whole days from this value never crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
