package domain

import "time"

// User is the sole persisted entity: one row per account.
type User struct {
	ID           int64
	Name         string
	Email        string
	Age          *int
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the mutable fields of a User. An update replaces all of
// them; ID and PasswordHash are never touched through a Profile.
type Profile struct {
	Name  string
	Email string
	Age   *int
}
