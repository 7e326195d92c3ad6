package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/pulse/internal/app"
	"github.com/evanschultz/pulse/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// BoardSnapshot resolves one sorted board view through app-level APIs.
func (a *AppServiceAdapter) BoardSnapshot(ctx context.Context, req BoardRequest) ([]TaskView, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	return a.service.BoardSnapshot(ctx, projectID, req.SortKey, req.SortOrder)
}

// Timeline resolves the timeline-visible task views for one project.
func (a *AppServiceAdapter) Timeline(ctx context.Context, projectID string) ([]TaskView, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	return a.service.Timeline(ctx, projectID)
}

// ProjectSummary resolves one derived project view.
func (a *AppServiceAdapter) ProjectSummary(ctx context.Context, projectID string) (ProjectSummary, error) {
	if a == nil || a.service == nil {
		return ProjectSummary{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ProjectSummary{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	return a.service.ProjectSummary(ctx, projectID)
}

// ChangeTaskStatus applies one status transition and returns the refreshed view.
func (a *AppServiceAdapter) ChangeTaskStatus(ctx context.Context, req StatusChangeRequest) (TaskView, error) {
	if a == nil || a.service == nil {
		return TaskView{}, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	taskID := strings.TrimSpace(req.TaskID)
	if taskID == "" {
		return TaskView{}, fmt.Errorf("task_id is required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Status) == "" {
		return TaskView{}, fmt.Errorf("status is required: %w", ErrInvalidRequest)
	}
	task, err := a.service.UpdateTaskStatus(ctx, taskID, req.Status, req.ChangedBy)
	if err != nil {
		return TaskView{}, err
	}
	return app.BuildTaskView(task, time.Now()), nil
}

// ListNotifications lists one recipient's notifications.
func (a *AppServiceAdapter) ListNotifications(ctx context.Context, req NotificationsRequest) ([]NotificationRecord, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", ErrInvalidRequest)
	}
	records, err := a.service.Notifications(ctx, userID, req.UnreadOnly)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationRecord, 0, len(records))
	for _, record := range records {
		out = append(out, notificationRecordFromDomain(record))
	}
	return out, nil
}

// MarkNotificationRead flips one notification's read flag.
func (a *AppServiceAdapter) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return fmt.Errorf("notification id is required: %w", ErrInvalidRequest)
	}
	return a.service.MarkNotificationRead(ctx, notificationID)
}

// notificationRecordFromDomain converts one domain record to its transport
// shape. CreatedAt serializes as UTC RFC 3339 with a literal Z suffix.
func notificationRecordFromDomain(n domain.Notification) NotificationRecord {
	return NotificationRecord{
		ID:            n.ID,
		ProjectID:     n.ProjectID,
		ProjectName:   n.ProjectName,
		TaskID:        n.TaskID,
		Title:         n.Title,
		Description:   n.Description,
		UserID:        n.UserID,
		AssigneeID:    n.AssigneeID,
		Priority:      n.Priority,
		Status:        n.Status,
		Type:          n.Type,
		Message:       n.Message,
		Icon:          n.Icon,
		OldStatus:     n.Meta.OldStatus,
		NewStatus:     n.Meta.NewStatus,
		ChangedBy:     n.Meta.ChangedBy,
		ChangedByName: n.Meta.ChangedByName,
		CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
		IsRead:        n.IsRead,
	}
}
