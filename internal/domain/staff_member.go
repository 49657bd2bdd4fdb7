package domain

import "strings"

// StaffMember is one roster entry: who handles which escalated task categories.
type StaffMember struct {
	ID        string
	Name      string
	AccountID string
	Tasks     string
}

// TaskCategories splits the free-text task list on commas.
func (s StaffMember) TaskCategories() []string {
	parts := strings.Split(s.Tasks, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Handles reports whether the member lists the category, ignoring case.
func (s StaffMember) Handles(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	for _, c := range s.TaskCategories() {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
