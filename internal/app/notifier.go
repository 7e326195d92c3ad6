package app

import (
	"context"
	"io"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/pulse/internal/domain"
)

// Notifier fans one task status transition out to its recipients through an
// injected sink. Delivery is best-effort: per-recipient failures are logged
// and skipped, and nothing that happens here ever reaches the status-update
// flow that triggered it.
type Notifier struct {
	projects ProjectDirectory
	users    UserDirectory
	sink     NotificationSink
	idGen    IDGenerator
	clock    Clock
	logger   *charmLog.Logger
}

// DeliveryOutcome records one per-recipient delivery attempt.
type DeliveryOutcome struct {
	RecipientID string
	Err         error
}

// NewNotifier constructs a new value for this package.
func NewNotifier(projects ProjectDirectory, users UserDirectory, sink NotificationSink, idGen IDGenerator, clock Clock, logger *charmLog.Logger) *Notifier {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	return &Notifier{
		projects: projects,
		users:    users,
		sink:     sink,
		idGen:    idGen,
		clock:    clock,
		logger:   logger,
	}
}

// NotifyStatusChange runs one status-transition fan-out. Fire and forget:
// the caller's update flow must succeed whatever happens here, so every
// failure path degrades to a log line.
func (n *Notifier) NotifyStatusChange(ctx context.Context, projectID, taskID string, prev domain.Task, newStatus, changedBy string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("status-change fan-out aborted", "project_id", projectID, "task_id", taskID, "panic", r)
		}
	}()

	outcomes := n.fanOut(ctx, projectID, taskID, prev, newStatus, changedBy)
	delivered, failed := 0, 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			continue
		}
		delivered++
	}
	if delivered == 0 && failed == 0 {
		return
	}
	n.logger.Info("status-change fan-out complete", "project_id", projectID, "task_id", taskID, "delivered", delivered, "failed", failed)
}

// fanOut resolves recipients and delivers one record per recipient,
// collecting per-recipient outcomes instead of stopping on failure. The
// no-op and empty-recipient guards run before any lookup or delivery I/O.
func (n *Notifier) fanOut(ctx context.Context, projectID, taskID string, prev domain.Task, newStatus, changedBy string) []DeliveryOutcome {
	newStatus = strings.TrimSpace(newStatus)
	changedBy = strings.TrimSpace(changedBy)
	if newStatus == "" {
		return nil
	}
	if domain.NormalizeStatus(prev.Status) == domain.NormalizeStatus(newStatus) {
		return nil
	}

	project := n.resolveProject(ctx, projectID)
	recipients := resolveRecipients(prev, project, changedBy)
	if len(recipients) == 0 {
		return nil
	}

	actorName := n.resolveActorName(ctx, changedBy)
	now := n.clock()

	outcomes := make([]DeliveryOutcome, 0, len(recipients))
	for _, recipient := range recipients {
		err := n.deliver(ctx, recipient, project, prev, newStatus, changedBy, actorName, now)
		if err != nil {
			n.logger.Warn("notification delivery failed", "task_id", taskID, "recipient", recipient, "err", err)
		}
		outcomes = append(outcomes, DeliveryOutcome{RecipientID: recipient, Err: err})
	}
	return outcomes
}

// deliver builds and emits one recipient's notification record.
func (n *Notifier) deliver(ctx context.Context, recipient string, project domain.Project, prev domain.Task, newStatus, changedBy, actorName string, now time.Time) error {
	message := domain.StatusChangeMessage(actorName, prev.Status, newStatus, recipient == changedBy && changedBy != "")
	record, err := domain.NewNotification(domain.NotificationInput{
		ID:          n.idGen(),
		ProjectID:   project.ID,
		ProjectName: project.Name,
		TaskID:      prev.ID,
		Title:       prev.Title,
		Description: prev.Description,
		UserID:      recipient,
		Priority:    prev.Priority,
		Status:      newStatus,
		Type:        domain.NotificationTypeStatusChange,
		Message:     message,
		Icon:        domain.NotificationIconStatusChange,
		Meta: domain.NotificationMeta{
			OldStatus:     prev.Status,
			NewStatus:     newStatus,
			ChangedBy:     changedBy,
			ChangedByName: actorName,
		},
	}, now)
	if err != nil {
		return err
	}
	return n.sink.CreateNotification(ctx, record)
}

// resolveProject looks up the project, degrading to an id-only record when
// the lookup fails so the fan-out can still reach the task-level recipients.
func (n *Notifier) resolveProject(ctx context.Context, projectID string) domain.Project {
	if n.projects == nil || strings.TrimSpace(projectID) == "" {
		return domain.Project{ID: strings.TrimSpace(projectID)}
	}
	project, err := n.projects.GetProject(ctx, projectID)
	if err != nil {
		n.logger.Warn("project lookup failed during fan-out", "project_id", projectID, "err", err)
		return domain.Project{ID: projectID}
	}
	return project
}

// resolveActorName resolves the actor's display name. A missing actor reads
// as "Someone"; a failed lookup degrades to the raw actor id.
func (n *Notifier) resolveActorName(ctx context.Context, changedBy string) string {
	if changedBy == "" {
		return domain.FallbackActorName
	}
	if n.users == nil {
		return changedBy
	}
	user, err := n.users.GetUser(ctx, changedBy)
	if err != nil {
		return changedBy
	}
	return user.Label()
}

// resolveRecipients builds the deduplicated, order-preserving recipient
// union: assignee, project owner (creator fallback), collaborators, then the
// acting user. Empty ids are skipped.
func resolveRecipients(task domain.Task, project domain.Project, changedBy string) []string {
	candidates := make([]string, 0, len(task.CollaboratorIDs)+3)
	candidates = append(candidates, task.AssigneeID, project.Owner())
	candidates = append(candidates, task.CollaboratorIDs...)
	candidates = append(candidates, changedBy)

	out := make([]string, 0, len(candidates))
	seen := map[string]struct{}{}
	for _, raw := range candidates {
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
