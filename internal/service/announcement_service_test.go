package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type fakeAnnouncementRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Announcement

	publishDueFn func(ctx context.Context, now time.Time) (int64, error)
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{items: make(map[uuid.UUID]*model.Announcement)}
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

func (f *fakeAnnouncementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[a.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

func (f *fakeAnnouncementRepo) ListByState(
	_ context.Context,
	state model.PublishState,
	_ repository.AnnouncementOrder,
) ([]*model.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Announcement
	for _, item := range f.items {
		if item.State() == state {
			clone := *item
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	if f.publishDueFn != nil {
		return f.publishDueFn(ctx, now)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var promoted int64
	for _, item := range f.items {
		if !item.Published && item.PublishedSchedule != nil && !item.PublishedSchedule.After(now) {
			item.Published = true
			item.PublishedSchedule = nil
			item.Draft = false
			item.UpdatedAt = now
			promoted++
		}
	}
	return promoted, nil
}

func newTestAnnouncementService(repo repository.AnnouncementRepository) *AnnouncementService {
	svc := NewAnnouncementService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func assertTriple(t *testing.T, item *model.Announcement, published bool, scheduleSet bool, draft bool) {
	t.Helper()
	if item.Published != published {
		t.Fatalf("published: expected %v, got %v", published, item.Published)
	}
	if (item.PublishedSchedule != nil) != scheduleSet {
		t.Fatalf("schedule set: expected %v, got %v", scheduleSet, item.PublishedSchedule != nil)
	}
	if item.Draft != draft {
		t.Fatalf("draft: expected %v, got %v", draft, item.Draft)
	}
}

func TestCreate_DeriveStates(t *testing.T) {
	t.Parallel()

	schedule := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	boolPtr := func(v bool) *bool { return &v }

	cases := []struct {
		name      string
		published *bool
		schedule  *time.Time
		wantState model.PublishState
	}{
		{"published true wins over schedule", boolPtr(true), &schedule, model.PublishStatePublished},
		{"published true alone", boolPtr(true), nil, model.PublishStatePublished},
		{"schedule alone", nil, &schedule, model.PublishStateScheduled},
		{"published false with schedule", boolPtr(false), &schedule, model.PublishStateScheduled},
		{"nothing set", nil, nil, model.PublishStateDraft},
		{"published false alone", boolPtr(false), nil, model.PublishStateDraft},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestAnnouncementService(newFakeAnnouncementRepo())
			item, err := svc.Create(context.Background(), CreateAnnouncementRequest{
				Title:             "Clean-up drive",
				Content:           "Schedule for the quarterly clean-up drive.",
				Published:         tc.published,
				PublishedSchedule: tc.schedule,
			})
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			if got := item.State(); got != tc.wantState {
				t.Fatalf("expected state %s, got %s", tc.wantState, got)
			}
			switch tc.wantState {
			case model.PublishStatePublished:
				assertTriple(t, item, true, false, false)
			case model.PublishStateScheduled:
				assertTriple(t, item, false, true, true)
				if !item.PublishedSchedule.Equal(schedule) {
					t.Fatalf("schedule changed: %v", item.PublishedSchedule)
				}
			case model.PublishStateDraft:
				assertTriple(t, item, false, false, true)
			}
		})
	}
}

func TestCreate_RequiresTitleAndContent(t *testing.T) {
	t.Parallel()

	svc := newTestAnnouncementService(newFakeAnnouncementRepo())

	if _, err := svc.Create(context.Background(), CreateAnnouncementRequest{Title: "  ", Content: "body"}); err != ErrInvalidAnnouncementReq {
		t.Fatalf("expected ErrInvalidAnnouncementReq, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateAnnouncementRequest{Title: "title", Content: ""}); err != ErrInvalidAnnouncementReq {
		t.Fatalf("expected ErrInvalidAnnouncementReq, got %v", err)
	}
}

func TestUpdate_ScheduleAloneMovesDraftToScheduled(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	draft, err := svc.Create(context.Background(), CreateAnnouncementRequest{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	schedule := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), draft.ID.String(), UpdateAnnouncementRequest{
		PublishedSchedule:    &schedule,
		PublishedScheduleSet: true,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	assertTriple(t, updated, false, true, true)
}

func TestUpdate_PublishedTrueAlonePromotesAnyState(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	schedule := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	scheduled, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "t", Content: "c", PublishedSchedule: &schedule,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	published := true
	updated, err := svc.Update(context.Background(), scheduled.ID.String(), UpdateAnnouncementRequest{
		Published: &published,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	assertTriple(t, updated, true, false, false)
}

func TestUpdate_NullScheduleDemotesToDraft(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	schedule := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	scheduled, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "t", Content: "c", PublishedSchedule: &schedule,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(context.Background(), scheduled.ID.String(), UpdateAnnouncementRequest{
		PublishedSchedule:    nil,
		PublishedScheduleSet: true,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	assertTriple(t, updated, false, false, true)
}

func TestUpdate_ContentOnlyPatchPreservesTriple(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	schedule := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	scheduled, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "t", Content: "c", PublishedSchedule: &schedule,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	newContent := "updated body"
	updated, err := svc.Update(context.Background(), scheduled.ID.String(), UpdateAnnouncementRequest{
		Content: &newContent,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	assertTriple(t, updated, false, true, true)
	if !updated.PublishedSchedule.Equal(schedule) {
		t.Fatalf("schedule changed: %v", updated.PublishedSchedule)
	}
	if updated.Content != newContent {
		t.Fatalf("content not applied: %q", updated.Content)
	}
}

func TestUpdate_PublishedFalseKeepsStoredSchedule(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	schedule := time.Date(2025, 7, 2, 8, 0, 0, 0, time.UTC)
	scheduled, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "t", Content: "c", PublishedSchedule: &schedule,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	published := false
	updated, err := svc.Update(context.Background(), scheduled.ID.String(), UpdateAnnouncementRequest{
		Published: &published,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	assertTriple(t, updated, false, true, true)
}

func TestUpdate_NotFoundAndBadID(t *testing.T) {
	t.Parallel()

	svc := newTestAnnouncementService(newFakeAnnouncementRepo())

	if _, err := svc.Update(context.Background(), uuid.NewString(), UpdateAnnouncementRequest{}); err != ErrAnnouncementNotFound {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "not-a-uuid", UpdateAnnouncementRequest{}); err != ErrInvalidAnnouncementReq {
		t.Fatalf("expected ErrInvalidAnnouncementReq, got %v", err)
	}
}

func TestPublishDue_PromotesOnlyDueScheduled(t *testing.T) {
	t.Parallel()

	repo := newFakeAnnouncementRepo()
	svc := newTestAnnouncementService(repo)

	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	due, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "due", Content: "c", PublishedSchedule: &past,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	notDue, err := svc.Create(context.Background(), CreateAnnouncementRequest{
		Title: "later", Content: "c", PublishedSchedule: &future,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateAnnouncementRequest{Title: "draft", Content: "c"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	promoted, err := svc.PublishDue(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PublishDue returned error: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("expected 1 promoted, got %d", promoted)
	}

	got, err := svc.GetByID(context.Background(), due.ID.String())
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	assertTriple(t, got, true, false, false)

	got, err = svc.GetByID(context.Background(), notDue.ID.String())
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	assertTriple(t, got, false, true, true)

	// A second sweep finds nothing; promotion is idempotent.
	promoted, err = svc.PublishDue(context.Background(), time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PublishDue returned error: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("expected 0 promoted on repeat sweep, got %d", promoted)
	}
}
