package dto

// StaffMember is the wire shape of a roster entry. Id is optional on input.
type StaffMember struct {
	ID        string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name      string `json:"name" validate:"max=256"`
	AccountID string `json:"accountId" validate:"max=256"`
	Tasks     string `json:"tasks" validate:"max=256"`
}

// ReplaceRosterRequest wraps the POST /api/staff body for validation.
type ReplaceRosterRequest struct {
	Members []StaffMember `json:"members" validate:"max=500,dive"`
}
