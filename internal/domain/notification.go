package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationTypeStatusChange marks notifications produced by a task status
// transition.
const NotificationTypeStatusChange = "status-change"

// NotificationIconStatusChange is the display icon carried on status-change
// notifications.
const NotificationIconStatusChange = "status"

// fallbackStatusLabel stands in for a blank previous status in messages.
const fallbackStatusLabel = "unknown"

// FallbackActorName stands in when no actor id was supplied at all.
const FallbackActorName = "Someone"

// NotificationMeta carries the status-transition audit payload.
type NotificationMeta struct {
	OldStatus     string
	NewStatus     string
	ChangedBy     string
	ChangedByName string
}

// Notification stores one per-recipient record emitted by the fan-out
// engine. Records are immutable after creation and owned by the sink; only
// the read flag changes afterwards, and only on the sink's side.
type Notification struct {
	ID          string
	ProjectID   string
	ProjectName string
	TaskID      string
	Title       string
	Description string
	UserID      string
	AssigneeID  string
	Priority    string
	Status      string
	Type        string
	Message     string
	Icon        string
	Meta        NotificationMeta
	CreatedAt   time.Time
	IsRead      bool
}

// NotificationInput holds write-time values for creating one notification.
type NotificationInput struct {
	ID          string
	ProjectID   string
	ProjectName string
	TaskID      string
	Title       string
	Description string
	UserID      string
	Priority    string
	Status      string
	Type        string
	Message     string
	Icon        string
	Meta        NotificationMeta
}

// NewNotification validates one notification create request and stamps its
// UTC creation time. AssigneeID mirrors UserID for this payload shape.
func NewNotification(in NotificationInput, now time.Time) (Notification, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.UserID = strings.TrimSpace(in.UserID)
	if in.ID == "" {
		return Notification{}, ErrInvalidID
	}
	if in.UserID == "" {
		return Notification{}, ErrInvalidID
	}
	return Notification{
		ID:          in.ID,
		ProjectID:   strings.TrimSpace(in.ProjectID),
		ProjectName: strings.TrimSpace(in.ProjectName),
		TaskID:      strings.TrimSpace(in.TaskID),
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		AssigneeID:  in.UserID,
		Priority:    in.Priority,
		Status:      in.Status,
		Type:        in.Type,
		Message:     in.Message,
		Icon:        in.Icon,
		Meta:        in.Meta,
		CreatedAt:   now.UTC(),
		IsRead:      false,
	}, nil
}

// StatusChangeMessage builds the personalized transition text for one
// recipient. The actor receives a self-directed message; a blank previous
// status reads as "unknown".
func StatusChangeMessage(actorName, oldStatus, newStatus string, self bool) string {
	oldStatus = strings.TrimSpace(oldStatus)
	if oldStatus == "" {
		oldStatus = fallbackStatusLabel
	}
	newStatus = strings.TrimSpace(newStatus)
	if self {
		return fmt.Sprintf("You changed task status from '%s' to '%s'.", oldStatus, newStatus)
	}
	return fmt.Sprintf("%s changed task status from '%s' to '%s'.", actorName, oldStatus, newStatus)
}
