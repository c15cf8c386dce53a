// Package models contains data structures for the forum's domain models.
package models

import "time"

// User is the login identity. Authentication itself is handled by the
// accounts endpoints; the rest of the forum only reads ID and IsSuperuser.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	Profile     *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultBio is stored when a profile is created without a biography.
const DefaultBio = "No description provided"

// Profile is the one-time, per-user forum profile.
type Profile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FirstName  string    `gorm:"size:20" json:"first_name"`
	LastName   string    `gorm:"size:20" json:"last_name"`
	Bio        string    `gorm:"size:252;not null" json:"bio"`
	JoinedDate time.Time `gorm:"autoCreateTime" json:"joined_date"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Filled     bool      `gorm:"not null;default:false" json:"filled"`
}
