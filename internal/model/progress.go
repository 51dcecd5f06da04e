package model

import (
	"time"

	"gorm.io/datatypes"
)

// CategoryStats is the rolling summary for one category.
type CategoryStats struct {
	Attempts  int     `json:"attempts"`
	BestScore float64 `json:"best_score"`
	LastScore float64 `json:"last_score"`
}

// Progress is the per-user aggregate derived from the attempt log.
// Version increments on every write and guards compare-and-swap updates.
// Applied records the recently folded attempt ids with their creation time.
type Progress struct {
	Document
	UserID     string                                       `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	ByCategory datatypes.JSONType[map[string]CategoryStats] `json:"by_category"`
	Applied    datatypes.JSONType[map[string]time.Time]     `json:"-"`
	Version    int64                                        `gorm:"not null;default:0" json:"-"`
}

func (Progress) TableName() string { return CollectionProgress }

// Stats returns a copy of the per-category map, never nil.
func (p Progress) Stats() map[string]CategoryStats {
	out := make(map[string]CategoryStats)
	for category, stats := range p.ByCategory.Data() {
		out[category] = stats
	}
	return out
}

// AppliedAttempts returns a copy of the folded attempt ids, never nil.
func (p Progress) AppliedAttempts() map[string]time.Time {
	out := make(map[string]time.Time)
	for id, createdAt := range p.Applied.Data() {
		out[id] = createdAt
	}
	return out
}
