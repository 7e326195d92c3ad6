package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/pulse/internal/app"
	"github.com/evanschultz/pulse/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			team_ids_json TEXT NOT NULL DEFAULT '[]',
			tags_json TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			overdue_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			assignee_id TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			collaborators_json TEXT NOT NULL DEFAULT '[]',
			due_date TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			subtask_count INTEGER NOT NULL DEFAULT 0,
			subtask_completed_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL DEFAULT '',
			project_name TEXT NOT NULL DEFAULT '',
			task_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL,
			assignee_id TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			meta_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// CreateProject creates project.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	teamJSON, err := json.Marshal(p.TeamIDs)
	if err != nil {
		return fmt.Errorf("encode project team_ids: %w", err)
	}
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode project tags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects(id, name, description, owner_id, created_by, team_ids_json, tags_json, status, priority, overdue_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.OwnerID, p.CreatedBy, string(teamJSON), string(tagsJSON), p.Status, p.Priority, p.OverdueCount, ts(p.CreatedAt), ts(p.UpdatedAt))
	return err
}

// GetProject returns project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, created_by, team_ids_json, tags_json, status, priority, overdue_count, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists projects.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, created_by, team_ids_json, tags_json, status, priority, overdue_count, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	collabJSON, err := json.Marshal(t.CollaboratorIDs)
	if err != nil {
		return fmt.Errorf("encode task collaborators: %w", err)
	}
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("encode task tags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, project_id, title, description, status, priority, assignee_id, owner_id, collaborators_json, due_date, tags_json, subtask_count, subtask_completed_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.OwnerID, string(collabJSON), t.DueDate, string(tagsJSON), t.SubtaskCount, t.SubtaskCompletedCount, ts(t.CreatedAt), ts(t.UpdatedAt))
	return err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	collabJSON, err := json.Marshal(t.CollaboratorIDs)
	if err != nil {
		return fmt.Errorf("encode task collaborators: %w", err)
	}
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("encode task tags: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, owner_id = ?, collaborators_json = ?, due_date = ?, tags_json = ?, subtask_count = ?, subtask_completed_count = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.OwnerID, string(collabJSON), t.DueDate, string(tagsJSON), t.SubtaskCount, t.SubtaskCompletedCount, ts(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, description, status, priority, assignee_id, owner_id, collaborators_json, due_date, tags_json, subtask_count, subtask_completed_count, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks lists tasks.
func (r *Repository) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, title, description, status, priority, assignee_id, owner_id, collaborators_json, due_date, tags_json, subtask_count, subtask_completed_count, created_at, updated_at
		FROM tasks
		WHERE project_id = ?
		ORDER BY created_at ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateUser creates user.
func (r *Repository) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(id, full_name, display_name, name, email)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.FullName, u.DisplayName, u.Name, u.Email)
	return err
}

// GetUser returns user.
func (r *Repository) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, display_name, name, email
		FROM users
		WHERE id = ?
	`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.DisplayName, &u.Name, &u.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, app.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// CreateNotification creates notification.
func (r *Repository) CreateNotification(ctx context.Context, n domain.Notification) error {
	metaJSON, err := json.Marshal(n.Meta)
	if err != nil {
		return fmt.Errorf("encode notification meta: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications(id, project_id, project_name, task_id, title, description, user_id, assignee_id, priority, status, type, message, icon, meta_json, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.ProjectID, n.ProjectName, n.TaskID, n.Title, n.Description, n.UserID, n.AssigneeID, n.Priority, n.Status, n.Type, n.Message, n.Icon, string(metaJSON), ts(n.CreatedAt), boolToInt(n.IsRead))
	return err
}

// ListNotifications lists one recipient's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `
		SELECT id, project_id, project_name, task_id, title, description, user_id, assignee_id, priority, status, type, message, icon, meta_json, created_at, is_read
		FROM notifications
		WHERE user_id = ?
	`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips one notification's read flag.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string, _ time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1 WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanProject handles scan project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		teamRaw    string
		tagsRaw    string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedBy, &teamRaw, &tagsRaw, &p.Status, &p.Priority, &p.OverdueCount, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, app.ErrNotFound
		}
		return domain.Project{}, err
	}
	if err := decodeStringList(teamRaw, &p.TeamIDs); err != nil {
		return domain.Project{}, fmt.Errorf("decode project team_ids_json: %w", err)
	}
	if err := decodeStringList(tagsRaw, &p.Tags); err != nil {
		return domain.Project{}, fmt.Errorf("decode project tags_json: %w", err)
	}
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	return p, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		collabRaw  string
		tagsRaw    string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssigneeID, &t.OwnerID, &collabRaw, &t.DueDate, &tagsRaw, &t.SubtaskCount, &t.SubtaskCompletedCount, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	if err := decodeStringList(collabRaw, &t.CollaboratorIDs); err != nil {
		return domain.Task{}, fmt.Errorf("decode task collaborators_json: %w", err)
	}
	if err := decodeStringList(tagsRaw, &t.Tags); err != nil {
		return domain.Task{}, fmt.Errorf("decode task tags_json: %w", err)
	}
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanNotification handles scan notification.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n          domain.Notification
		metaRaw    string
		createdRaw string
		isRead     int
	)
	if err := s.Scan(&n.ID, &n.ProjectID, &n.ProjectName, &n.TaskID, &n.Title, &n.Description, &n.UserID, &n.AssigneeID, &n.Priority, &n.Status, &n.Type, &n.Message, &n.Icon, &metaRaw, &createdRaw, &isRead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, app.ErrNotFound
		}
		return domain.Notification{}, err
	}
	if strings.TrimSpace(metaRaw) == "" {
		metaRaw = "{}"
	}
	if err := json.Unmarshal([]byte(metaRaw), &n.Meta); err != nil {
		return domain.Notification{}, fmt.Errorf("decode notification meta_json: %w", err)
	}
	n.CreatedAt = parseTS(createdRaw)
	n.IsRead = isRead != 0
	return n, nil
}

// decodeStringList decodes one JSON list column into a string slice.
func decodeStringList(raw string, out *[]string) error {
	if strings.TrimSpace(raw) == "" {
		raw = "[]"
	}
	return json.Unmarshal([]byte(raw), out)
}

// translateNoRows maps zero-affected updates to ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

// boolToInt handles bool to int.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
