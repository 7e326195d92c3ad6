package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/pulse/internal/domain"
)

// Service represents service data used by this package.
type Service struct {
	repo     Repository
	notifier *Notifier
	idGen    IDGenerator
	clock    Clock
	logger   *charmLog.Logger
}

// NewService constructs a new value for this package. A nil notifier
// disables status-change fan-out; a nil clock uses wall time.
func NewService(repo Repository, notifier *Notifier, idGen IDGenerator, clock Clock, logger *charmLog.Logger) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		idGen:    idGen,
		clock:    clock,
		logger:   logger,
	}
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		in.ID = s.idGen()
	}
	project, err := domain.NewProject(in, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// CreateTask creates task.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		in.ID = s.idGen()
	}
	task, err := domain.NewTask(in, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.repo.GetProject(ctx, task.ProjectID); err != nil {
		return domain.Task{}, fmt.Errorf("resolve project %q: %w", task.ProjectID, err)
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// RegisterUser registers user.
func (s *Service) RegisterUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		user.ID = s.idGen()
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateTaskStatus persists a raw status change and triggers the
// status-change fan-out. The fan-out is fire-and-forget: the returned error
// only ever reflects the task update itself.
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID, newStatus, changedBy string) (domain.Task, error) {
	newStatus = strings.TrimSpace(newStatus)
	if newStatus == "" {
		return domain.Task{}, ErrInvalidStatus
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("resolve task %q: %w", taskID, err)
	}
	prev := task
	task.SetStatus(newStatus, s.clock())
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task status: %w", err)
	}
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, task.ProjectID, task.ID, prev, newStatus, changedBy)
	}
	return task, nil
}

// BoardSnapshot derives the sorted task read models for one project.
func (s *Service) BoardSnapshot(ctx context.Context, projectID, sortKey, sortOrder string) ([]TaskView, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("resolve project %q: %w", projectID, err)
	}
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := s.clock()
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, BuildTaskView(task, now))
	}
	return SortTaskViews(views, sortKey, domain.NormalizeSortOrder(sortOrder)), nil
}

// Timeline derives the timeline-visible task views for one project.
func (s *Service) Timeline(ctx context.Context, projectID string) ([]TaskView, error) {
	views, err := s.BoardSnapshot(ctx, projectID, "deadline", string(domain.SortAsc))
	if err != nil {
		return nil, err
	}
	visible := make([]TaskView, 0, len(views))
	for _, view := range views {
		if view.TimelineVisible {
			visible = append(visible, view)
		}
	}
	return visible, nil
}

// Projects derives the aggregate read model for every known project.
func (s *Service) Projects(ctx context.Context) ([]ProjectView, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	now := s.clock()
	views := make([]ProjectView, 0, len(projects))
	for _, project := range projects {
		tasks, err := s.repo.ListTasks(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks for %q: %w", project.ID, err)
		}
		views = append(views, BuildProjectView(project, tasks, now))
	}
	return views, nil
}

// ProjectSummary derives the aggregate read model for one project.
func (s *Service) ProjectSummary(ctx context.Context, projectID string) (ProjectView, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return ProjectView{}, fmt.Errorf("resolve project %q: %w", projectID, err)
	}
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return ProjectView{}, fmt.Errorf("list tasks: %w", err)
	}
	return BuildProjectView(project, tasks, s.clock()), nil
}

// Notifications lists a recipient's notifications, optionally unread only.
func (s *Service) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidID
	}
	records, err := s.repo.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return records, nil
}

// MarkNotificationRead flips one notification's read flag.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID string) error {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.MarkNotificationRead(ctx, notificationID, s.clock()); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
