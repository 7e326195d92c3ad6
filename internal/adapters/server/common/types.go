// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/evanschultz/pulse/internal/app"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// BoardRequest carries one board-snapshot query.
type BoardRequest struct {
	ProjectID string
	SortKey   string
	SortOrder string
}

// StatusChangeRequest carries one task status transition.
type StatusChangeRequest struct {
	TaskID    string
	Status    string
	ChangedBy string
}

// NotificationsRequest carries one recipient-scoped notification query.
type NotificationsRequest struct {
	UserID     string
	UnreadOnly bool
}

// NotificationRecord is the transport shape for one notification.
type NotificationRecord struct {
	ID            string `json:"id"`
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name"`
	TaskID        string `json:"task_id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	UserID        string `json:"user_id"`
	AssigneeID    string `json:"assignee_id"`
	Priority      string `json:"priority,omitempty"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	Icon          string `json:"icon,omitempty"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	ChangedBy     string `json:"changed_by,omitempty"`
	ChangedByName string `json:"changed_by_name,omitempty"`
	CreatedAt     string `json:"created_at"`
	IsRead        bool   `json:"is_read"`
}

// ProjectSummary is the transport shape for one derived project view.
type ProjectSummary = app.ProjectView

// TaskView is the transport shape for one derived task view.
type TaskView = app.TaskView

// BoardService exposes derived read models and status transitions to the
// server transports.
type BoardService interface {
	BoardSnapshot(ctx context.Context, req BoardRequest) ([]TaskView, error)
	Timeline(ctx context.Context, projectID string) ([]TaskView, error)
	ProjectSummary(ctx context.Context, projectID string) (ProjectSummary, error)
	ChangeTaskStatus(ctx context.Context, req StatusChangeRequest) (TaskView, error)
}

// NotificationService exposes the notification read surface to transports.
type NotificationService interface {
	ListNotifications(ctx context.Context, req NotificationsRequest) ([]NotificationRecord, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
}
