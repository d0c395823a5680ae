package models

import "time"

// Role names a user's permission tier.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleInstructor Role = "Instructor"
	RoleStudent    Role = "Student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	default:
		return false
	}
}

// User is an account that can log in. Email is the external key.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name      string    `gorm:"size:255;not null" bson:"name" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" bson:"email" json:"email"`
	Password  string    `gorm:"size:255;not null" bson:"password" json:"password,omitempty"`
	Role      Role      `gorm:"size:32;not null" bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// WithoutPassword returns a copy of u with the stored credential cleared.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}
