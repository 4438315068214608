package models

import "time"

// Profile is a GitHub login whose language stats can be shown.
type Profile struct {
	AddedAt  time.Time `json:"addedAt"`
	ID       string    `json:"id"`
	Login    string    `json:"login"`
	Label    string    `json:"label,omitempty"`
	Token    string    `json:"token,omitempty"`
	IsActive bool      `json:"isActive,omitempty"`
}

// DisplayName returns the label, falling back to the login.
func (p *Profile) DisplayName() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Login
}

// Clone returns a copy of the profile.
func (p *Profile) Clone() Profile {
	return *p
}
