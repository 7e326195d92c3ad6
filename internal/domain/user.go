package domain

import "strings"

// User stores one directory record for recipient and actor resolution.
type User struct {
	ID          string
	FullName    string
	DisplayName string
	Name        string
	Email       string
}

// Label returns the best human-readable name for the user: full name first,
// then display name, then plain name, then the raw id.
func (u User) Label() string {
	for _, candidate := range []string{u.FullName, u.DisplayName, u.Name} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return u.ID
}
