package domain

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"to do", StatusToDo},
		{"todo", StatusToDo},
		{"to-do", StatusToDo},
		{"  To Do  ", StatusToDo},
		{"in progress", StatusInProgress},
		{"In-Progress", StatusInProgress},
		{"COMPLETED", StatusCompleted},
		{"Blocked", StatusBlocked},
		{"", StatusToDo},
		{"   ", StatusToDo},
		{"nonsense", StatusToDo},
		{"done", StatusToDo},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"HIGH", "high"},
		{"  Low ", "low"},
		{"", "medium"},
		{"   ", "medium"},
		{"p1-urgent", "p1-urgent"},
	}
	for _, tc := range cases {
		if got := NormalizePriority(tc.raw); got != tc.want {
			t.Fatalf("NormalizePriority(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestStatusIsActive(t *testing.T) {
	if !StatusToDo.IsActive() || !StatusInProgress.IsActive() {
		t.Fatal("expected to-do and in-progress to be active")
	}
	if StatusCompleted.IsActive() || StatusBlocked.IsActive() {
		t.Fatal("expected completed and blocked to be inactive")
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range []Status{StatusToDo, StatusInProgress, StatusCompleted, StatusBlocked} {
		if !IsValidStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if IsValidStatus(Status("done")) {
		t.Fatal("expected non-canonical status to be invalid")
	}
}
