package model

import (
	"time"

	"github.com/google/uuid"
)

// PublishState is the derived lifecycle state of an announcement.
type PublishState string

const (
	PublishStateDraft     PublishState = "draft"
	PublishStateScheduled PublishState = "scheduled"
	PublishStatePublished PublishState = "published"
)

type Announcement struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Title             string     `db:"title" json:"title"`
	Content           string     `db:"content" json:"content"`
	Category          string     `db:"category" json:"category,omitempty"`
	Priority          string     `db:"priority" json:"priority,omitempty"`
	Hall              string     `db:"hall" json:"hall,omitempty"`
	EventDate         *time.Time `db:"event_date" json:"eventDate,omitempty"`
	EventTime         string     `db:"event_time" json:"eventTime,omitempty"`
	ExpectedAttendees string     `db:"expected_attendees" json:"expectedAttendees,omitempty"`
	Tags              []string   `db:"tags" json:"tags,omitempty"`
	Published         bool       `db:"published" json:"published"`
	PublishedSchedule *time.Time `db:"published_schedule" json:"publishedSchedule"`
	Draft             bool       `db:"draft" json:"draft"`
	CreatedByName     string     `db:"created_by_name" json:"createdByName,omitempty"`
	CreatedByEmail    string     `db:"created_by_email" json:"createdByEmail,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// State reports which of the three lifecycle states the stored triple
// represents. The triple is only ever written through the status deriver,
// so exactly one state applies.
func (a *Announcement) State() PublishState {
	switch {
	case a.Published:
		return PublishStatePublished
	case a.PublishedSchedule != nil:
		return PublishStateScheduled
	default:
		return PublishStateDraft
	}
}
