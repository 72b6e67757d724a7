package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionTypeComplaint = "Complaint"
	SubmissionTypeDocument  = "Document"
	SubmissionTypeInquiry   = "Inquiry"
)

type Submission struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ReferenceID      string    `db:"reference_id" json:"complaintId"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	SubmissionType   string    `db:"submission_type" json:"submissionType"`
	Type             string    `db:"type" json:"type,omitempty"`
	Priority         string    `db:"priority" json:"priority,omitempty"`
	Subject          string    `db:"subject" json:"subject,omitempty"`
	Message          string    `db:"message" json:"message"`
	Phone            string    `db:"phone" json:"phone,omitempty"`
	Address          string    `db:"address" json:"address,omitempty"`
	Location         string    `db:"location" json:"location,omitempty"`
	Hall             string    `db:"hall" json:"hall,omitempty"`
	Anonymous        bool      `db:"anonymous" json:"anonymous"`
	Urgent           bool      `db:"urgent" json:"urgent"`
	SMSNotifications bool      `db:"sms_notifications" json:"smsNotifications"`
	EvidenceURL      string    `db:"evidence_url" json:"evidenceUrl,omitempty"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}
