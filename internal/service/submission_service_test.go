package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type fakeSubmissionRepo struct {
	mu    sync.Mutex
	items []*model.Submission
}

func (f *fakeSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *s
	f.items = append(f.items, &clone)
	return nil
}

func (f *fakeSubmissionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == id {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionListFilter) ([]*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Submission
	for _, item := range f.items {
		if filter.Email != nil && item.Email != *filter.Email {
			continue
		}
		if filter.SubmissionType != nil && item.SubmissionType != *filter.SubmissionType {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		clone := *item
		out = append(out, &clone)
	}

	// Same page-size behavior as the postgres implementation.
	limit := filter.Pagination.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	offset := filter.Pagination.Offset
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListAllByEmail(_ context.Context, email string) ([]*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Submission
	for _, item := range f.items {
		if item.Email != email {
			continue
		}
		clone := *item
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) Count(_ context.Context, filter repository.SubmissionListFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, item := range f.items {
		if filter.Email != nil && item.Email != *filter.Email {
			continue
		}
		if filter.SubmissionType != nil && item.SubmissionType != *filter.SubmissionType {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		count++
	}
	return count, nil
}

type fakeCounterRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{seqs: make(map[string]int64)}
}

func (f *fakeCounterRepo) Next(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[key]++
	return f.seqs[key], nil
}

func TestCreateSubmission_ReferenceIDSequence(t *testing.T) {
	t.Parallel()

	svc := NewSubmissionService(&fakeSubmissionRepo{}, newFakeCounterRepo(), nil, nil)

	first, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Maria",
		SubmissionType: model.SubmissionTypeComplaint,
		Message:        "Streetlight is broken.",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if first.ReferenceID != "CMP-000001" {
		t.Fatalf("expected CMP-000001, got %s", first.ReferenceID)
	}
	if first.Status != "Pending" {
		t.Fatalf("expected Pending status, got %s", first.Status)
	}

	second, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Maria",
		SubmissionType: model.SubmissionTypeComplaint,
		Message:        "Still broken.",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if second.ReferenceID != "CMP-000002" {
		t.Fatalf("expected CMP-000002, got %s", second.ReferenceID)
	}

	document, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Jose",
		SubmissionType: model.SubmissionTypeDocument,
		Message:        "Barangay clearance please.",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	// Each submission type counts independently.
	if document.ReferenceID != "DOC-000001" {
		t.Fatalf("expected DOC-000001, got %s", document.ReferenceID)
	}
}

func TestCreateSubmission_AnonymousOverridesName(t *testing.T) {
	t.Parallel()

	svc := NewSubmissionService(&fakeSubmissionRepo{}, newFakeCounterRepo(), nil, nil)

	submission, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Maria",
		SubmissionType: model.SubmissionTypeComplaint,
		Message:        "noise complaint",
		Anonymous:      true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if submission.Name != "Anonymous" {
		t.Fatalf("expected Anonymous, got %s", submission.Name)
	}
}

func TestCreateSubmission_Validation(t *testing.T) {
	t.Parallel()

	svc := NewSubmissionService(&fakeSubmissionRepo{}, newFakeCounterRepo(), nil, nil)

	if _, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Maria",
		SubmissionType: model.SubmissionTypeComplaint,
		Message:        "   ",
	}); err != ErrInvalidSubmissionReq {
		t.Fatalf("expected ErrInvalidSubmissionReq for empty message, got %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateSubmissionRequest{
		Name:           "Maria",
		SubmissionType: "Other",
		Message:        "hello",
	}); err != ErrInvalidSubmissionReq {
		t.Fatalf("expected ErrInvalidSubmissionReq for unknown type, got %v", err)
	}
}
