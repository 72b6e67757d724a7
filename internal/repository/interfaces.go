package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"barangay-hub/internal/model"
)

type Pagination struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

// AnnouncementOrder selects the sort applied to announcement listings.
type AnnouncementOrder string

const (
	OrderUpdatedDesc AnnouncementOrder = "updated_desc"
	OrderScheduleAsc AnnouncementOrder = "schedule_asc"
	OrderCreatedDesc AnnouncementOrder = "created_desc"
)

type SubmissionListFilter struct {
	Email          *string    `json:"email,omitempty"`
	SubmissionType *string    `json:"submission_type,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Pagination     Pagination `json:"pagination"`
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) error
	ListByState(ctx context.Context, state model.PublishState, order AnnouncementOrder) ([]*model.Announcement, error)
	// PublishDue promotes every scheduled announcement whose schedule time is
	// at or before now in a single bulk conditional update. It returns the
	// number of promoted records.
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

type ResidentRepository interface {
	Create(ctx context.Context, r *model.Resident) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Resident, error)
	FindByEmail(ctx context.Context, email string) (*model.Resident, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.Resident, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	SetVerification(ctx context.Context, id uuid.UUID, token *string, expires *time.Time, verified bool) error
	// ClearExpiredVerifications removes verification tokens past their expiry.
	ClearExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, filter SubmissionListFilter) ([]*model.Submission, error)
	// ListAllByEmail returns every submission for one resident, newest first,
	// with no pagination. Dashboard tallies need the full set.
	ListAllByEmail(ctx context.Context, email string) ([]*model.Submission, error)
	Count(ctx context.Context, filter SubmissionListFilter) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
	CountByType(ctx context.Context, userType string) (int64, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	ListAll(ctx context.Context) ([]*model.Feedback, error)
}

type PredictionRepository interface {
	// Latest returns the most recent document of a kind, or ErrNotFound.
	Latest(ctx context.Context, kind string, synthetic bool) (*model.PredictionDocument, error)
	// ListByKind returns all documents of a kind, newest first.
	ListByKind(ctx context.Context, kind string, synthetic bool) ([]*model.PredictionDocument, error)
}

// CounterRepository hands out gap-free sequence numbers keyed by name. Next
// is atomic: concurrent callers never observe the same value for a key.
type CounterRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}
