// Package main provides the pulse CLI: project/task tracking with derived
// board views, deadline awareness, and status-change notifications.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	serveradapter "github.com/evanschultz/pulse/internal/adapters/server"
	servercommon "github.com/evanschultz/pulse/internal/adapters/server/common"
	"github.com/evanschultz/pulse/internal/adapters/storage/sqlite"
	"github.com/evanschultz/pulse/internal/app"
	"github.com/evanschultz/pulse/internal/config"
	"github.com/evanschultz/pulse/internal/domain"
	"github.com/evanschultz/pulse/internal/platform"
)

// version stores the build version, overridden at link time.
var version = "dev"

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("PULSE_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("PULSE_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "pulse"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "pulse %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		return nil
	case "serve", "projects", "board", "timeline", "summary", "status",
		"add-project", "add-task", "add-user", "notifications", "read":
		// Continue.
	case "":
		return fmt.Errorf("a command is required (paths, serve, projects, board, timeline, summary, status, add-project, add-task, add-user, notifications, read)")
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("PULSE_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("PULSE_DB_PATH")); envPath != "" {
			dbPath = envPath
		} else {
			dbPath = paths.DBPath
		}
	}

	defaultCfg := config.Default(dbPath)
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, appName, cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)

	if err := config.EnsureConfigDir(cfg.Database.Path); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()

	var notifier *app.Notifier
	if cfg.Notifications.Enabled {
		notifier = app.NewNotifier(repo, repo, repo, uuid.NewString, time.Now, logger)
	}
	svc := app.NewService(repo, notifier, uuid.NewString, time.Now, logger)
	logger.Debug("application service initialized", "notifications_enabled", cfg.Notifications.Enabled)

	rest := fs.Args()[1:]
	switch command {
	case "serve":
		return runServe(ctx, svc, rest, appName, cfg.Server)
	case "projects":
		return runProjects(ctx, svc, rest, stdout)
	case "board":
		return runBoard(ctx, svc, rest, cfg.Board, stdout)
	case "timeline":
		return runTimeline(ctx, svc, rest, stdout)
	case "summary":
		return runSummary(ctx, svc, rest, stdout)
	case "status":
		return runStatus(ctx, svc, rest, stdout)
	case "add-project":
		return runAddProject(ctx, svc, rest, stdout)
	case "add-task":
		return runAddTask(ctx, svc, rest, stdout)
	case "add-user":
		return runAddUser(ctx, svc, rest, stdout)
	case "notifications":
		return runNotifications(ctx, svc, rest, stdout)
	case "read":
		return runMarkRead(ctx, svc, rest, stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runServe runs the serve subcommand flow.
func runServe(ctx context.Context, svc *app.Service, args []string, appName string, serverCfg config.ServerConfig) error {
	fs := flag.NewFlagSet("pulse serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	fs.StringVar(&httpBind, "http", serverCfg.Bind, "HTTP listen address")
	fs.StringVar(&apiEndpoint, "api-endpoint", serverCfg.APIEndpoint, "HTTP API base endpoint")
	fs.StringVar(&mcpEndpoint, "mcp-endpoint", serverCfg.MCPEndpoint, "MCP streamable HTTP endpoint")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse serve flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected serve arguments: %v", fs.Args())
	}

	appAdapter := servercommon.NewAppServiceAdapter(svc)
	return serveCommandRunner(ctx, serveradapter.Config{
		HTTPBind:      httpBind,
		APIEndpoint:   apiEndpoint,
		MCPEndpoint:   mcpEndpoint,
		ServerName:    appName,
		ServerVersion: version,
	}, serveradapter.Dependencies{
		Board:         appAdapter,
		Notifications: appAdapter,
	})
}

// runProjects lists every project with its derived progress and risk.
func runProjects(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse projects", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse projects flags: %w", err)
	}

	views, err := svc.Projects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if asJSON {
		return writeJSONOutput(stdout, map[string]any{"projects": views})
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("PROJECT", "STATUS", "PROGRESS", "RISK", "TASKS", "OVERDUE")
	for _, view := range views {
		tbl.Row(
			view.Name,
			statusStyle(view.StatusColor).Render(string(view.Status)),
			strconv.Itoa(view.Progress)+"%",
			string(view.Risk),
			strconv.Itoa(view.TaskCount),
			strconv.Itoa(view.OverdueCount),
		)
	}
	_, _ = fmt.Fprintln(stdout, tbl.Render())
	return nil
}

// runBoard renders one project's board as a styled table.
func runBoard(ctx context.Context, svc *app.Service, args []string, boardCfg config.BoardConfig, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse board", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		projectID string
		sortKey   string
		sortOrder string
		asJSON    bool
	)
	fs.StringVar(&projectID, "project", "", "project id")
	fs.StringVar(&sortKey, "sort", boardCfg.SortKey, "sort field (progress, deadline, priority, title, status, created_at)")
	fs.StringVar(&sortOrder, "order", boardCfg.SortOrder, "sort direction (asc, desc)")
	fs.BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse board flags: %w", err)
	}
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("--project is required")
	}

	views, err := svc.BoardSnapshot(ctx, projectID, sortKey, sortOrder)
	if err != nil {
		return fmt.Errorf("board snapshot: %w", err)
	}
	if asJSON {
		return writeJSONOutput(stdout, map[string]any{"tasks": views})
	}
	_, _ = fmt.Fprintln(stdout, renderBoardTable(views))
	return nil
}

// runTimeline lists deadline-ordered visible tasks for one project.
func runTimeline(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse timeline", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		projectID string
		asJSON    bool
	)
	fs.StringVar(&projectID, "project", "", "project id")
	fs.BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse timeline flags: %w", err)
	}
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("--project is required")
	}

	views, err := svc.Timeline(ctx, projectID)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	if asJSON {
		return writeJSONOutput(stdout, map[string]any{"tasks": views})
	}
	_, _ = fmt.Fprintln(stdout, renderBoardTable(views))
	return nil
}

// runSummary prints one project's derived progress/risk view.
func runSummary(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse summary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		projectID string
		asJSON    bool
	)
	fs.StringVar(&projectID, "project", "", "project id")
	fs.BoolVar(&asJSON, "json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse summary flags: %w", err)
	}
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("--project is required")
	}

	summary, err := svc.ProjectSummary(ctx, projectID)
	if err != nil {
		return fmt.Errorf("project summary: %w", err)
	}
	if asJSON {
		return writeJSONOutput(stdout, summary)
	}
	name := statusStyle(summary.StatusColor).Render(summary.Name)
	_, _ = fmt.Fprintf(stdout, "%s (%s)\n", name, summary.ID)
	_, _ = fmt.Fprintf(stdout, "status: %s  priority: %s\n", summary.Status, summary.Priority)
	_, _ = fmt.Fprintf(stdout, "progress: %d%%  risk: %s\n", summary.Progress, summary.Risk)
	_, _ = fmt.Fprintf(stdout, "tasks: %d  overdue: %d\n", summary.TaskCount, summary.OverdueCount)
	return nil
}

// runStatus applies one task status transition.
func runStatus(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse status", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		taskID    string
		newStatus string
		changedBy string
	)
	fs.StringVar(&taskID, "task", "", "task id")
	fs.StringVar(&newStatus, "to", "", "new status")
	fs.StringVar(&changedBy, "by", "", "acting user id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse status flags: %w", err)
	}
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("--task is required")
	}
	if strings.TrimSpace(newStatus) == "" {
		return fmt.Errorf("--to is required")
	}

	task, err := svc.UpdateTaskStatus(ctx, taskID, newStatus, changedBy)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	view := app.BuildTaskView(task, time.Now())
	_, _ = fmt.Fprintf(stdout, "%s -> %s\n", task.ID, statusStyle(view.StatusColor).Render(string(view.Status)))
	return nil
}

// runAddProject creates one project.
func runAddProject(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse add-project", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var in domain.ProjectInput
	fs.StringVar(&in.Name, "name", "", "project name")
	fs.StringVar(&in.Description, "desc", "", "project description")
	fs.StringVar(&in.OwnerID, "owner", "", "owning user id")
	fs.StringVar(&in.CreatedBy, "by", "", "creating user id")
	fs.StringVar(&in.Status, "status", "", "initial status")
	fs.StringVar(&in.Priority, "priority", "", "priority")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse add-project flags: %w", err)
	}

	project, err := svc.CreateProject(ctx, in)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "created project %s (%s)\n", project.Name, project.ID)
	return nil
}

// runAddTask creates one task.
func runAddTask(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse add-task", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		in            domain.TaskInput
		collaborators string
		tags          string
	)
	fs.StringVar(&in.ProjectID, "project", "", "project id")
	fs.StringVar(&in.Title, "title", "", "task title")
	fs.StringVar(&in.Description, "desc", "", "task description")
	fs.StringVar(&in.Status, "status", "", "initial status")
	fs.StringVar(&in.Priority, "priority", "", "priority")
	fs.StringVar(&in.AssigneeID, "assignee", "", "assigned user id")
	fs.StringVar(&in.DueDate, "due", "", "due date (RFC 3339 or YYYY-MM-DD)")
	fs.StringVar(&collaborators, "collaborators", "", "comma-separated collaborator ids")
	fs.StringVar(&tags, "tags", "", "comma-separated tags")
	fs.IntVar(&in.SubtaskCount, "subtasks", 0, "subtask total")
	fs.IntVar(&in.SubtaskCompletedCount, "subtasks-done", 0, "completed subtask count")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse add-task flags: %w", err)
	}
	in.CollaboratorIDs = splitList(collaborators)
	in.Tags = splitList(tags)

	task, err := svc.CreateTask(ctx, in)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "created task %s (%s)\n", task.Title, task.ID)
	return nil
}

// runAddUser registers one user.
func runAddUser(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse add-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var user domain.User
	fs.StringVar(&user.FullName, "full-name", "", "full name")
	fs.StringVar(&user.DisplayName, "display-name", "", "display name")
	fs.StringVar(&user.Name, "name", "", "short name")
	fs.StringVar(&user.Email, "email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse add-user flags: %w", err)
	}

	created, err := svc.RegisterUser(ctx, user)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "registered user %s (%s)\n", created.Label(), created.ID)
	return nil
}

// runNotifications lists one recipient's notifications.
func runNotifications(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse notifications", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		userID     string
		unreadOnly bool
		asJSON     bool
	)
	fs.StringVar(&userID, "user", "", "recipient user id")
	fs.BoolVar(&unreadOnly, "unread", false, "unread only")
	fs.BoolVar(&asJSON, "json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse notifications flags: %w", err)
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("--user is required")
	}

	records, err := svc.Notifications(ctx, userID, unreadOnly)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}
	if asJSON {
		return writeJSONOutput(stdout, map[string]any{"notifications": records})
	}
	for _, n := range records {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		_, _ = fmt.Fprintf(stdout, "%s %s  %s  %s\n", marker, n.CreatedAt.UTC().Format(time.RFC3339), n.ID, n.Message)
	}
	return nil
}

// runMarkRead marks one notification as read.
func runMarkRead(ctx context.Context, svc *app.Service, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pulse read", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var notificationID string
	fs.StringVar(&notificationID, "id", "", "notification id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse read flags: %w", err)
	}
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("--id is required")
	}

	if err := svc.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "marked %s read\n", notificationID)
	return nil
}

// renderBoardTable renders task views as one bordered table with status-coded rows.
func renderBoardTable(views []app.TaskView) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("TASK", "STATUS", "PRIORITY", "PROGRESS", "DUE", "FLAGS")
	for _, view := range views {
		flags := make([]string, 0, 2)
		if view.Overdue {
			flags = append(flags, "overdue")
		}
		if view.Highlight != domain.HighlightNone {
			flags = append(flags, string(view.Highlight))
		}
		tbl.Row(
			view.Title,
			statusStyle(view.StatusColor).Render(string(view.Status)),
			view.Priority,
			strconv.Itoa(view.Progress)+"%",
			view.DueDate,
			strings.Join(flags, ","),
		)
	}
	return tbl.Render()
}

// statusStyle maps one status color name to a terminal style.
func statusStyle(color domain.StatusColorName) lipgloss.Style {
	switch color {
	case domain.ColorGreen:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case domain.ColorYellow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case domain.ColorRed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}

// writeJSONOutput encodes one payload as indented JSON.
func writeJSONOutput(stdout io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := stdout.Write(encoded); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// firstArg handles first arg.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// newRuntimeLogger configures the console log sink from config state.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig) (*charmLog.Logger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	return charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	}), nil
}

// splitList parses one comma-separated flag value into trimmed entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
