package model

import "gorm.io/datatypes"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a multiple-choice item. CorrectIndex is zero-based into Options.
type Question struct {
	Document
	Category     string                      `gorm:"size:128;not null;index" json:"category"`
	Prompt       string                      `gorm:"type:text;not null" json:"prompt"`
	Options      datatypes.JSONSlice[string] `json:"options"`
	CorrectIndex int                         `gorm:"not null" json:"correct_index"`
	Explanation  *string                     `gorm:"type:text" json:"explanation"`
	Difficulty   string                      `gorm:"size:16;not null;default:easy" json:"difficulty"`
}

func (Question) TableName() string { return CollectionQuestion }
