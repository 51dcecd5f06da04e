package model

import "gorm.io/datatypes"

// Attempt is one immutable record of a user answering a category.
type Attempt struct {
	Document
	UserID       string                   `gorm:"size:36;not null;index" json:"user_id"`
	Category     string                   `gorm:"size:128;not null;index" json:"category"`
	Answers      datatypes.JSONSlice[int] `json:"answers"`
	CorrectCount int                      `gorm:"not null" json:"correct_count"`
	Total        int                      `gorm:"not null" json:"total"`
	Score        float64                  `gorm:"not null" json:"score"`
}

func (Attempt) TableName() string { return CollectionAttempt }
