package app

import (
	"strings"
	"time"

	"github.com/evanschultz/pulse/internal/domain"
)

// TaskView is the derived read model for one task. Raw status and priority
// are canonicalized once here, at view-build time, so presentation and
// transports never re-apply defaulting rules.
type TaskView struct {
	ID              string                 `json:"id"`
	ProjectID       string                 `json:"project_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description,omitempty"`
	RawStatus       string                 `json:"raw_status,omitempty"`
	Status          domain.Status          `json:"status"`
	StatusColor     domain.StatusColorName `json:"status_color"`
	Priority        string                 `json:"priority"`
	AssigneeID      string                 `json:"assignee_id,omitempty"`
	DueDate         string                 `json:"due_date,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Progress        int                    `json:"progress"`
	Overdue         bool                   `json:"overdue"`
	Highlight       domain.HighlightCode   `json:"highlight"`
	TimelineVisible bool                   `json:"timeline_visible"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ProjectView is the derived read model for one project.
type ProjectView struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	OwnerID      string                 `json:"owner_id,omitempty"`
	Status       domain.Status          `json:"status"`
	StatusColor  domain.StatusColorName `json:"status_color"`
	Priority     string                 `json:"priority"`
	Progress     int                    `json:"progress"`
	Risk         domain.RiskLevel       `json:"risk"`
	TaskCount    int                    `json:"task_count"`
	OverdueCount int                    `json:"overdue_count"`
}

// BuildTaskView derives the read-model fields for one task at the given
// instant. Pure: the task record is never mutated or retained.
func BuildTaskView(task domain.Task, now time.Time) TaskView {
	return TaskView{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		Title:           task.Title,
		Description:     task.Description,
		RawStatus:       task.Status,
		Status:          domain.NormalizeStatus(task.Status),
		StatusColor:     domain.StatusColor(task.Status),
		Priority:        domain.NormalizePriority(task.Priority),
		AssigneeID:      task.AssigneeID,
		DueDate:         task.DueDate,
		Tags:            task.Tags,
		Progress:        task.Progress(),
		Overdue:         domain.IsOverdue(task.DueDate, task.Status, now),
		Highlight:       domain.Highlight(task.DueDate, task.Status, now),
		TimelineVisible: domain.VisibleOnTimeline(task.DueDate, task.Status, now),
		CreatedAt:       task.CreatedAt,
	}
}

// SortTaskViews orders task views by one named field. Unknown keys leave the
// input order untouched; views missing the keyed value land at the end in
// either direction.
func SortTaskViews(views []TaskView, key string, order domain.SortOrder) []TaskView {
	return domain.SortByField(views, taskViewField(key), order)
}

// taskViewField maps one sort-key name to its extractor.
func taskViewField(key string) func(TaskView) domain.FieldValue {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "progress":
		return func(v TaskView) domain.FieldValue {
			return domain.NumberValue(float64(v.Progress))
		}
	case "deadline", "due_date", "duedate":
		return func(v TaskView) domain.FieldValue {
			due, ok := domain.ParseDueDate(v.DueDate)
			if !ok {
				return domain.AbsentValue()
			}
			return domain.NumberValue(float64(due.Unix()))
		}
	case "priority":
		return func(v TaskView) domain.FieldValue {
			return domain.TextValue(v.Priority)
		}
	case "title":
		return func(v TaskView) domain.FieldValue {
			if v.Title == "" {
				return domain.AbsentValue()
			}
			return domain.TextValue(v.Title)
		}
	case "status":
		return func(v TaskView) domain.FieldValue {
			return domain.TextValue(string(v.Status))
		}
	case "created_at", "createdat":
		return func(v TaskView) domain.FieldValue {
			if v.CreatedAt.IsZero() {
				return domain.AbsentValue()
			}
			return domain.NumberValue(float64(v.CreatedAt.Unix()))
		}
	default:
		return nil
	}
}

// BuildProjectView derives the aggregate read model for one project from its
// task list. Completed-over-total drives progress; the live overdue ratio
// plus the project's carried missed-deadline count drive risk.
func BuildProjectView(project domain.Project, tasks []domain.Task, now time.Time) ProjectView {
	total := len(tasks)
	completed := 0
	overdue := 0
	for _, task := range tasks {
		if domain.NormalizeStatus(task.Status) == domain.StatusCompleted {
			completed++
		}
		if domain.IsOverdue(task.DueDate, task.Status, now) {
			overdue++
		}
	}
	return ProjectView{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		OwnerID:      project.Owner(),
		Status:       domain.NormalizeStatus(project.Status),
		StatusColor:  domain.StatusColor(project.Status),
		Priority:     domain.NormalizePriority(project.Priority),
		Progress:     domain.Progress(completed, total),
		Risk:         domain.ClassifyRisk(total, overdue, project.OverdueCount),
		TaskCount:    total,
		OverdueCount: overdue,
	}
}
