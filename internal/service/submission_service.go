package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barangay-hub/internal/event"
	"barangay-hub/internal/metrics"
	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrInvalidSubmissionReq = errors.New("invalid submission input")
)

const (
	counterKeyComplaint = "complaint"
	counterKeyDocument  = "document"
	counterKeyInquiry   = "inquiry"

	statusPending = "Pending"
)

type CreateSubmissionRequest struct {
	Name             string
	Email            string
	SubmissionType   string
	Type             string
	Priority         string
	Subject          string
	Message          string
	Phone            string
	Address          string
	Location         string
	Hall             string
	Anonymous        bool
	Urgent           bool
	SMSNotifications bool
	EvidenceURL      string
}

type SubmissionService struct {
	repo     repository.SubmissionRepository
	counters repository.CounterRepository
	bus      *event.Bus
	logger   *zap.Logger

	now func() time.Time
}

func NewSubmissionService(
	repo repository.SubmissionRepository,
	counters repository.CounterRepository,
	bus *event.Bus,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SubmissionService{
		repo:     repo,
		counters: counters,
		bus:      bus,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// referenceID builds the human-facing tracking number, e.g. CMP-000042.
// The numeric part comes from an atomic per-type counter so two concurrent
// submissions never share a reference.
func (s *SubmissionService) referenceID(ctx context.Context, submissionType string) (string, error) {
	var key, prefix string
	switch submissionType {
	case model.SubmissionTypeComplaint:
		key, prefix = counterKeyComplaint, "CMP"
	case model.SubmissionTypeDocument:
		key, prefix = counterKeyDocument, "DOC"
	case model.SubmissionTypeInquiry:
		key, prefix = counterKeyInquiry, "INQ"
	default:
		return "", ErrInvalidSubmissionReq
	}

	seq, err := s.counters.Next(ctx, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, seq), nil
}

func (s *SubmissionService) Create(ctx context.Context, req CreateSubmissionRequest) (*model.Submission, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrInvalidSubmissionReq
	}

	name := strings.TrimSpace(req.Name)
	if req.Anonymous {
		name = "Anonymous"
	} else if name == "" {
		return nil, ErrInvalidSubmissionReq
	}

	reference, err := s.referenceID(ctx, req.SubmissionType)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		ID:               uuid.New(),
		ReferenceID:      reference,
		Name:             name,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		SubmissionType:   req.SubmissionType,
		Type:             strings.TrimSpace(req.Type),
		Priority:         strings.TrimSpace(req.Priority),
		Subject:          strings.TrimSpace(req.Subject),
		Message:          message,
		Phone:            strings.TrimSpace(req.Phone),
		Address:          strings.TrimSpace(req.Address),
		Location:         strings.TrimSpace(req.Location),
		Hall:             strings.TrimSpace(req.Hall),
		Anonymous:        req.Anonymous,
		Urgent:           req.Urgent,
		SMSNotifications: req.SMSNotifications,
		EvidenceURL:      strings.TrimSpace(req.EvidenceURL),
		Status:           statusPending,
		CreatedAt:        s.now(),
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, err
	}

	metrics.CountSubmission(submission.SubmissionType)

	if s.bus != nil {
		s.bus.Publish(event.EventSubmissionCreated, event.SubmissionCreatedPayload{
			SubmissionID:   submission.ID.String(),
			ReferenceID:    submission.ReferenceID,
			Email:          submission.Email,
			Phone:          submission.Phone,
			SubmissionType: submission.SubmissionType,
			SMSRequested:   submission.SMSNotifications,
			CreatedAt:      submission.CreatedAt,
		})
	}

	return submission, nil
}

func (s *SubmissionService) GetByID(ctx context.Context, submissionID string) (*model.Submission, error) {
	id, err := uuid.Parse(strings.TrimSpace(submissionID))
	if err != nil {
		return nil, ErrInvalidSubmissionReq
	}

	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *SubmissionService) List(
	ctx context.Context,
	filter repository.SubmissionListFilter,
) ([]*model.Submission, int64, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
