package models

import (
	"time"

	"github.com/rahul/acadcore/internal/store"
)

// Profile links an identity-provider user to its assigned role. The id is
// the durable user identifier issued by the provider, so user and profile
// are one-to-one.
type Profile struct {
	ID        string    `json:"id" db:"id" validate:"required"`
	Email     string    `json:"email" db:"email" validate:"omitempty,email"`
	FullName  string    `json:"fullName" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ToRow converts the profile into a store row. Profiles carry their id
// explicitly since it comes from the identity provider.
func (p Profile) ToRow() store.Row {
	return store.Row{
		"id":        p.ID,
		"email":     p.Email,
		"full_name": p.FullName,
		"role":      string(p.Role),
	}
}

// ProfileFromRow decodes a store row into a Profile.
func ProfileFromRow(r store.Row) Profile {
	return Profile{
		ID:        r.String("id"),
		Email:     r.String("email"),
		FullName:  r.String("full_name"),
		Role:      Role(r.String("role")),
		CreatedAt: r.Time("created_at"),
	}
}
