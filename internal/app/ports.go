package app

import (
	"context"
	"time"

	"github.com/evanschultz/pulse/internal/domain"
)

// Repository represents repository data used by this package.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context) ([]domain.Project, error)

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context, string) ([]domain.Task, error)

	CreateUser(context.Context, domain.User) error
	GetUser(context.Context, string) (domain.User, error)

	CreateNotification(context.Context, domain.Notification) error
	ListNotifications(context.Context, string, bool) ([]domain.Notification, error)
	MarkNotificationRead(context.Context, string, time.Time) error
}

// ProjectDirectory resolves project records for the fan-out engine.
type ProjectDirectory interface {
	GetProject(context.Context, string) (domain.Project, error)
}

// UserDirectory resolves user records for actor-name personalization.
type UserDirectory interface {
	GetUser(context.Context, string) (domain.User, error)
}

// NotificationSink receives per-recipient notification records. Each create
// is an independent delivery; a failure must be reportable per call.
type NotificationSink interface {
	CreateNotification(context.Context, domain.Notification) error
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time
