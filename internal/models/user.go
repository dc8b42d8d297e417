// Package models contains the PingMe domain types shared by the client layer
// and the development API server.
package models

import "time"

// User is a PingMe account. JSON keys follow the external API.
type User struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	ProfilePhotoURL string    `json:"fotoPerfil,omitempty"`
	Bio             string    `json:"biografia,omitempty"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// UserPatch carries the editable profile fields. Nil fields are left alone.
type UserPatch struct {
	Name            *string `json:"name,omitempty"`
	Bio             *string `json:"biografia,omitempty"`
	ProfilePhotoURL *string `json:"fotoPerfil,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfilePhotoURL != nil {
		u.ProfilePhotoURL = *p.ProfilePhotoURL
	}
}
