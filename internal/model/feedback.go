package model

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Email     string         `db:"email" json:"email"`
	Category  string         `db:"category" json:"category,omitempty"`
	Rating    int            `db:"rating" json:"rating"`
	Message   string         `db:"message" json:"message"`
	Details   map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}
