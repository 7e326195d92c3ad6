package domain

import (
	"strings"
	"time"
)

// Project stores one raw project record. OverdueCount is precomputed by the
// ingest side and carried through, never recomputed here.
type Project struct {
	ID           string
	Name         string
	Description  string
	OwnerID      string
	CreatedBy    string
	TeamIDs      []string
	Tags         []string
	Status       string
	Priority     string
	OverdueCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectInput holds write-time values for creating one project.
type ProjectInput struct {
	ID           string
	Name         string
	Description  string
	OwnerID      string
	CreatedBy    string
	TeamIDs      []string
	Tags         []string
	Status       string
	Priority     string
	OverdueCount int
}

// NewProject validates and normalizes one project create request.
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)

	if in.ID == "" {
		return Project{}, ErrInvalidID
	}
	if in.Name == "" {
		return Project{}, ErrInvalidName
	}
	if in.OverdueCount < 0 {
		in.OverdueCount = 0
	}

	return Project{
		ID:           in.ID,
		Name:         in.Name,
		Description:  strings.TrimSpace(in.Description),
		OwnerID:      strings.TrimSpace(in.OwnerID),
		CreatedBy:    strings.TrimSpace(in.CreatedBy),
		TeamIDs:      normalizeIDList(in.TeamIDs),
		Tags:         normalizeTags(in.Tags),
		Status:       strings.TrimSpace(in.Status),
		Priority:     strings.TrimSpace(in.Priority),
		OverdueCount: in.OverdueCount,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}, nil
}

// Owner returns the project owner id, falling back to the creator when no
// explicit owner is set.
func (p Project) Owner() string {
	if p.OwnerID != "" {
		return p.OwnerID
	}
	return p.CreatedBy
}
