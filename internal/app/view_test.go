package app

import (
	"testing"
	"time"

	"github.com/evanschultz/pulse/internal/domain"
)

func TestBuildTaskView(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	task := domain.Task{
		ID:                    "t1",
		ProjectID:             "p1",
		Title:                 "Write docs",
		Status:                "In Progress – Client Feedback Pending",
		Priority:              "  HIGH ",
		DueDate:               "2025-11-03",
		SubtaskCount:          3,
		SubtaskCompletedCount: 1,
	}

	view := BuildTaskView(task, now)
	if view.Status != domain.StatusInProgress {
		t.Fatalf("unexpected canonical status %q", view.Status)
	}
	if view.RawStatus != task.Status {
		t.Fatalf("expected raw status preserved, got %q", view.RawStatus)
	}
	if view.StatusColor != domain.ColorYellow {
		t.Fatalf("unexpected color %q", view.StatusColor)
	}
	if view.Priority != "high" {
		t.Fatalf("unexpected priority %q", view.Priority)
	}
	if view.Progress != 33 {
		t.Fatalf("unexpected progress %d", view.Progress)
	}
	if view.Overdue {
		t.Fatal("expected task not overdue")
	}
	if view.Highlight != domain.HighlightYellow {
		t.Fatalf("unexpected highlight %q", view.Highlight)
	}
	if !view.TimelineVisible {
		t.Fatal("expected task visible on timeline")
	}
}

func TestBuildTaskViewDefaultsMalformedInput(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	view := BuildTaskView(domain.Task{ID: "t1", DueDate: "not a date", Status: "???"}, now)
	if view.Status != domain.StatusToDo {
		t.Fatalf("unexpected status %q", view.Status)
	}
	if view.Priority != "medium" {
		t.Fatalf("unexpected priority %q", view.Priority)
	}
	if view.Overdue || view.Highlight != domain.HighlightNone {
		t.Fatal("expected malformed due date to carry no temporal signal")
	}
	if view.StatusColor != domain.ColorGrey {
		t.Fatalf("unexpected color %q", view.StatusColor)
	}
}

func TestSortTaskViewsNullsLastBothDirections(t *testing.T) {
	views := []TaskView{
		{ID: "a", DueDate: ""},
		{ID: "b", DueDate: "2025-11-05"},
		{ID: "c", DueDate: "2025-11-01"},
	}
	asc := SortTaskViews(views, "deadline", domain.SortAsc)
	if asc[0].ID != "c" || asc[1].ID != "b" || asc[2].ID != "a" {
		t.Fatalf("unexpected asc order %s,%s,%s", asc[0].ID, asc[1].ID, asc[2].ID)
	}
	desc := SortTaskViews(views, "deadline", domain.SortDesc)
	if desc[0].ID != "b" || desc[1].ID != "c" || desc[2].ID != "a" {
		t.Fatalf("unexpected desc order %s,%s,%s", desc[0].ID, desc[1].ID, desc[2].ID)
	}
}

func TestSortTaskViewsStableOnEqualKeys(t *testing.T) {
	views := []TaskView{
		{ID: "first", DueDate: "2025-11-05"},
		{ID: "second", DueDate: "2025-11-05"},
	}
	sorted := SortTaskViews(views, "deadline", domain.SortAsc)
	if sorted[0].ID != "first" || sorted[1].ID != "second" {
		t.Fatalf("expected stable order, got %s,%s", sorted[0].ID, sorted[1].ID)
	}
}

func TestSortTaskViewsUnknownKey(t *testing.T) {
	views := []TaskView{{ID: "b"}, {ID: "a"}}
	sorted := SortTaskViews(views, "mystery", domain.SortAsc)
	if sorted[0].ID != "b" || sorted[1].ID != "a" {
		t.Fatal("expected unknown key to leave order untouched")
	}
}

func TestBuildProjectViewEmpty(t *testing.T) {
	now := time.Now()
	view := BuildProjectView(domain.Project{ID: "p1", Name: "Empty"}, nil, now)
	if view.Progress != 0 {
		t.Fatalf("unexpected progress %d", view.Progress)
	}
	if view.Risk != domain.RiskNA {
		t.Fatalf("unexpected risk %q", view.Risk)
	}
}

func TestBuildProjectViewRiskOverride(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	project := domain.Project{ID: "p1", Name: "Launch", OverdueCount: 4}
	tasks := []domain.Task{
		{ID: "t1", Status: "to-do"},
		{ID: "t2", Status: "to-do"},
	}
	view := BuildProjectView(project, tasks, now)
	if view.Risk != domain.RiskHigh {
		t.Fatalf("expected missed-deadline history to force High, got %q", view.Risk)
	}
}
