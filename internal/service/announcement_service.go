package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

var (
	ErrAnnouncementNotFound   = errors.New("announcement not found")
	ErrInvalidAnnouncementReq = errors.New("invalid announcement input")
)

type CreateAnnouncementRequest struct {
	Title             string
	Content           string
	Category          string
	Priority          string
	Hall              string
	EventDate         *time.Time
	EventTime         string
	ExpectedAttendees string
	Tags              []string
	Published         *bool
	PublishedSchedule *time.Time
	CreatedByName     string
	CreatedByEmail    string
}

// UpdateAnnouncementRequest is a partial patch. Nil pointers mean "not
// supplied". PublishedSchedule needs the extra Set flag because an explicit
// JSON null (clear the schedule) must be distinguishable from the field
// being absent.
type UpdateAnnouncementRequest struct {
	Title                *string
	Content              *string
	Category             *string
	Priority             *string
	Hall                 *string
	EventDate            *time.Time
	EventTime            *string
	ExpectedAttendees    *string
	Tags                 []string
	Published            *bool
	PublishedSchedule    *time.Time
	PublishedScheduleSet bool
}

type AnnouncementService struct {
	repo   repository.AnnouncementRepository
	logger *zap.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewAnnouncementService(repo repository.AnnouncementRepository, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnnouncementService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// publishTriple is the canonical (published, publishedSchedule, draft)
// combination. Exactly three values are ever produced:
//
//	published:  (true,  nil,      false)
//	scheduled:  (false, schedule, true)
//	draft:      (false, nil,      true)
type publishTriple struct {
	published bool
	schedule  *time.Time
	draft     bool
}

// derivePublishState maps the effective publish inputs to the canonical
// triple. First match wins: an explicit published=true beats any schedule,
// a schedule beats plain draft. Derivation is total; it never fails.
func derivePublishState(published bool, schedule *time.Time) publishTriple {
	switch {
	case published:
		return publishTriple{published: true}
	case schedule != nil:
		utc := schedule.UTC()
		return publishTriple{schedule: &utc, draft: true}
	default:
		return publishTriple{draft: true}
	}
}

func (s *AnnouncementService) Create(
	ctx context.Context,
	req CreateAnnouncementRequest,
) (*model.Announcement, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidAnnouncementReq
	}

	published := req.Published != nil && *req.Published
	triple := derivePublishState(published, req.PublishedSchedule)

	now := s.now()
	item := &model.Announcement{
		ID:                uuid.New(),
		Title:             title,
		Content:           content,
		Category:          strings.TrimSpace(req.Category),
		Priority:          strings.TrimSpace(req.Priority),
		Hall:              strings.TrimSpace(req.Hall),
		EventDate:         req.EventDate,
		EventTime:         strings.TrimSpace(req.EventTime),
		ExpectedAttendees: strings.TrimSpace(req.ExpectedAttendees),
		Tags:              req.Tags,
		Published:         triple.published,
		PublishedSchedule: triple.schedule,
		Draft:             triple.draft,
		CreatedByName:     strings.TrimSpace(req.CreatedByName),
		CreatedByEmail:    strings.ToLower(strings.TrimSpace(req.CreatedByEmail)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *AnnouncementService) Update(
	ctx context.Context,
	announcementID string,
	req UpdateAnnouncementRequest,
) (*model.Announcement, error) {
	id, err := uuid.Parse(strings.TrimSpace(announcementID))
	if err != nil {
		return nil, ErrInvalidAnnouncementReq
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}

	next := *current
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrInvalidAnnouncementReq
		}
		next.Title = title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, ErrInvalidAnnouncementReq
		}
		next.Content = content
	}
	if req.Category != nil {
		next.Category = strings.TrimSpace(*req.Category)
	}
	if req.Priority != nil {
		next.Priority = strings.TrimSpace(*req.Priority)
	}
	if req.Hall != nil {
		next.Hall = strings.TrimSpace(*req.Hall)
	}
	if req.EventDate != nil {
		next.EventDate = req.EventDate
	}
	if req.EventTime != nil {
		next.EventTime = strings.TrimSpace(*req.EventTime)
	}
	if req.ExpectedAttendees != nil {
		next.ExpectedAttendees = strings.TrimSpace(*req.ExpectedAttendees)
	}
	if req.Tags != nil {
		next.Tags = req.Tags
	}

	// Overlay the supplied publish fields onto the stored ones, then derive.
	// Stored triples are always canonical, so a patch that touches neither
	// field derives the identical triple back.
	published := next.Published
	if req.Published != nil {
		published = *req.Published
	}
	schedule := next.PublishedSchedule
	if req.PublishedScheduleSet {
		schedule = req.PublishedSchedule
	}
	triple := derivePublishState(published, schedule)
	next.Published = triple.published
	next.PublishedSchedule = triple.schedule
	next.Draft = triple.draft
	next.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &next, nil
}

func (s *AnnouncementService) GetByID(ctx context.Context, announcementID string) (*model.Announcement, error) {
	id, err := uuid.Parse(strings.TrimSpace(announcementID))
	if err != nil {
		return nil, ErrInvalidAnnouncementReq
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *AnnouncementService) ListDrafts(ctx context.Context) ([]*model.Announcement, error) {
	return s.repo.ListByState(ctx, model.PublishStateDraft, repository.OrderUpdatedDesc)
}

func (s *AnnouncementService) ListScheduled(ctx context.Context) ([]*model.Announcement, error) {
	return s.repo.ListByState(ctx, model.PublishStateScheduled, repository.OrderScheduleAsc)
}

func (s *AnnouncementService) ListPublished(ctx context.Context) ([]*model.Announcement, error) {
	return s.repo.ListByState(ctx, model.PublishStatePublished, repository.OrderUpdatedDesc)
}

// PublishDue promotes every scheduled announcement whose schedule time has
// passed. One bulk conditional update; no read-modify-write. Safe to call
// concurrently with client updates: last write wins at the store.
func (s *AnnouncementService) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	promoted, err := s.repo.PublishDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if promoted > 0 {
		s.logger.Info("scheduled announcements published", zap.Int64("count", promoted))
	}
	return promoted, nil
}
