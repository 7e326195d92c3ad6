package domain

import (
	"strings"
	"time"
)

// HighlightCode identifies one short-horizon due-date warning signal.
type HighlightCode string

// HighlightCode values.
const (
	HighlightRed    HighlightCode = "red"
	HighlightYellow HighlightCode = "yellow"
	HighlightNone   HighlightCode = "none"
)

// highlightWindowDays bounds the yellow warning horizon.
const highlightWindowDays = 7

// dueDateLayouts lists accepted ISO-8601 due-date shapes, most specific
// first. A trailing Z is handled by the RFC 3339 layout; zone-less
// date-times parse as UTC.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses one raw due-date string into a UTC timestamp. The
// second return value reports whether the input was usable; malformed input
// is reported as absent, never as an error.
func ParseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// calendarDate truncates one timestamp to its UTC calendar date.
func calendarDate(ts time.Time) time.Time {
	year, month, day := ts.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether a task's due date has passed. Comparison is by
// UTC calendar date, so a task due today is never overdue no matter the
// time of day. Completed tasks and tasks without a parsable due date are
// never overdue.
func IsOverdue(dueDate, status string, now time.Time) bool {
	if NormalizeStatus(status) == StatusCompleted {
		return false
	}
	due, ok := ParseDueDate(dueDate)
	if !ok {
		return false
	}
	return calendarDate(due).Before(calendarDate(now))
}

// Highlight derives the imminent-due-date warning for a task. Due today is
// red; due within the next seven days is yellow; everything else, including
// already-overdue dates, carries no highlight. Overdue is a separate signal
// and deliberately does not bleed into the highlight.
func Highlight(dueDate, status string, today time.Time) HighlightCode {
	if NormalizeStatus(status) == StatusCompleted {
		return HighlightNone
	}
	due, ok := ParseDueDate(dueDate)
	if !ok {
		return HighlightNone
	}
	delta := int(calendarDate(due).Sub(calendarDate(today)).Hours() / 24)
	switch {
	case delta == 0:
		return HighlightRed
	case delta >= 1 && delta <= highlightWindowDays:
		return HighlightYellow
	default:
		return HighlightNone
	}
}

// VisibleOnTimeline reports whether a task belongs on the timeline view.
// Completed tasks are hidden. A task shows when its due date has arrived, or
// while its canonical status is still active, so future to-do and
// in-progress work stays visible while a future blocked task does not.
func VisibleOnTimeline(dueDate, status string, today time.Time) bool {
	canonical := NormalizeStatus(status)
	if canonical == StatusCompleted {
		return false
	}
	if due, ok := ParseDueDate(dueDate); ok {
		if !calendarDate(due).After(calendarDate(today)) {
			return true
		}
	}
	return canonical.IsActive()
}
