package model

import "time"

// User is an account that can log in and submit attempts.
type User struct {
	Document
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash   string     `gorm:"size:255;not null" json:"-"`
	Token          *string    `gorm:"size:64;uniqueIndex" json:"-"`
	TokenExpiresAt *time.Time `json:"-"`
}

func (User) TableName() string { return CollectionUser }

// PublicUser is the part of a user safe to hand back to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
