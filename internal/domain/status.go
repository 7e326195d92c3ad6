package domain

import "strings"

// Status identifies one canonical task lifecycle status.
type Status string

// Status values.
const (
	StatusToDo       Status = "to-do"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// validStatuses stores supported canonical status values.
var validStatuses = []Status{
	StatusToDo,
	StatusInProgress,
	StatusCompleted,
	StatusBlocked,
}

// DefaultPriority is applied when a record carries no usable priority.
const DefaultPriority = "medium"

// NormalizeStatus canonicalizes one raw status value. Unknown, empty, and
// missing inputs all default to to-do; normalization never fails.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "to do", "todo", "to-do":
		return StatusToDo
	case "in progress", "in-progress":
		return StatusInProgress
	case "completed":
		return StatusCompleted
	case "blocked":
		return StatusBlocked
	default:
		return StatusToDo
	}
}

// IsValidStatus reports whether a status is one of the canonical values.
func IsValidStatus(status Status) bool {
	for _, valid := range validStatuses {
		if status == valid {
			return true
		}
	}
	return false
}

// NormalizePriority lowercases and trims one raw priority value. Empty and
// missing inputs default to medium; arbitrary non-empty values pass through.
func NormalizePriority(raw string) string {
	priority := strings.ToLower(strings.TrimSpace(raw))
	if priority == "" {
		return DefaultPriority
	}
	return priority
}

// IsActive reports whether a canonical status represents unfinished,
// unblocked work.
func (s Status) IsActive() bool {
	return s == StatusToDo || s == StatusInProgress
}
