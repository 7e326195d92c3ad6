package domain

import (
	"strings"
	"time"
)

// Task stores one raw tracker record. Status, priority, and due date are kept
// as entered; derived views canonicalize them on read.
type Task struct {
	ID                    string
	ProjectID             string
	Title                 string
	Description           string
	Status                string
	Priority              string
	AssigneeID            string
	OwnerID               string
	CollaboratorIDs       []string
	DueDate               string
	Tags                  []string
	SubtaskCount          int
	SubtaskCompletedCount int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TaskInput holds write-time values for creating one task.
type TaskInput struct {
	ID                    string
	ProjectID             string
	Title                 string
	Description           string
	Status                string
	Priority              string
	AssigneeID            string
	OwnerID               string
	CollaboratorIDs       []string
	DueDate               string
	Tags                  []string
	SubtaskCount          int
	SubtaskCompletedCount int
}

// NewTask validates and normalizes one task create request. Loose fields are
// cleaned at this boundary: collaborator ids and tags are deduplicated with
// empties dropped, counters are floored at zero, and the raw status/priority
// strings are trimmed but otherwise stored as given.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.SubtaskCount < 0 {
		in.SubtaskCount = 0
	}
	if in.SubtaskCompletedCount < 0 {
		in.SubtaskCompletedCount = 0
	}

	return Task{
		ID:                    in.ID,
		ProjectID:             in.ProjectID,
		Title:                 in.Title,
		Description:           in.Description,
		Status:                strings.TrimSpace(in.Status),
		Priority:              strings.TrimSpace(in.Priority),
		AssigneeID:            strings.TrimSpace(in.AssigneeID),
		OwnerID:               strings.TrimSpace(in.OwnerID),
		CollaboratorIDs:       normalizeIDList(in.CollaboratorIDs),
		DueDate:               strings.TrimSpace(in.DueDate),
		Tags:                  normalizeTags(in.Tags),
		SubtaskCount:          in.SubtaskCount,
		SubtaskCompletedCount: in.SubtaskCompletedCount,
		CreatedAt:             now.UTC(),
		UpdatedAt:             now.UTC(),
	}, nil
}

// SetStatus records a raw status change.
func (t *Task) SetStatus(status string, now time.Time) {
	t.Status = strings.TrimSpace(status)
	t.UpdatedAt = now.UTC()
}

// Progress returns the task's subtask completion percentage.
func (t Task) Progress() int {
	return Progress(t.SubtaskCompletedCount, t.SubtaskCount)
}

// normalizeIDList deduplicates an id list preserving order, dropping empties.
func normalizeIDList(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// normalizeTags lowercases, deduplicates, and drops empty tags.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
