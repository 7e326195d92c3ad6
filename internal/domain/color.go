package domain

import "strings"

// StatusColorName identifies one display color for a status chip.
type StatusColorName string

// StatusColorName values.
const (
	ColorGrey   StatusColorName = "grey"
	ColorGreen  StatusColorName = "green"
	ColorYellow StatusColorName = "yellow"
	ColorRed    StatusColorName = "red"
)

// StatusColor maps one raw status value to its display color. Matching is
// substring-tolerant for the "in progress" phrase so annotated statuses like
// "In Progress – Client Feedback Pending" still read as yellow. Blocked is an
// exact match only; phrases that merely contain "blocked" fall through to
// grey.
func StatusColor(raw string) StatusColorName {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return ColorGrey
	}
	if strings.Contains(status, "in progress") || strings.Contains(status, "in-progress") {
		return ColorYellow
	}
	switch status {
	case "completed":
		return ColorGreen
	case "blocked":
		return ColorRed
	case "to do", "todo", "to-do":
		return ColorGrey
	default:
		return ColorGrey
	}
}
