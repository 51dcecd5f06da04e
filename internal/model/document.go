package model

import "time"

// Collection names shared by the store and the services.
const (
	CollectionUser     = "user"
	CollectionQuestion = "question"
	CollectionAttempt  = "attempt"
	CollectionProgress = "progress"
)

// Document carries the identity and timestamps every stored record has.
type Document struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Document) DocumentID() string {
	return d.ID
}

func (d *Document) AssignID(id string) {
	d.ID = id
}

// All lists the persisted types in migration order.
func All() []any {
	return []any{&User{}, &Question{}, &Attempt{}, &Progress{}}
}
