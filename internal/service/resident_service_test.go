package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"barangay-hub/internal/event"
	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type fakeResidentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Resident
}

func newFakeResidentRepo() *fakeResidentRepo {
	return &fakeResidentRepo{items: make(map[uuid.UUID]*model.Resident)}
}

func (f *fakeResidentRepo) Create(_ context.Context, r *model.Resident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *r
	f.items[r.ID] = &clone
	return nil
}

func (f *fakeResidentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeResidentRepo) FindByEmail(_ context.Context, email string) (*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.Email == email {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResidentRepo) FindByVerificationToken(_ context.Context, token string) (*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.VerificationToken != nil && *item.VerificationToken == token {
			clone := *item
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResidentRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, item := range f.items {
		if item.Email == email {
			count++
		}
	}
	return count, nil
}

func (f *fakeResidentRepo) SetVerification(_ context.Context, id uuid.UUID, token *string, expires *time.Time, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	item.VerificationToken = token
	item.VerificationExpires = expires
	item.EmailVerified = verified
	return nil
}

func (f *fakeResidentRepo) ClearExpiredVerifications(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cleared int64
	for _, item := range f.items {
		if item.VerificationExpires != nil && item.VerificationExpires.Before(now) {
			item.VerificationToken = nil
			item.VerificationExpires = nil
			cleared++
		}
	}
	return cleared, nil
}

func TestNormalizePhonePH(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09171234567", "639171234567", false},
		{"9171234567", "639171234567", false},
		{"639171234567", "639171234567", false},
		{"+63 917 123 4567", "639171234567", false},
		{"0917-123-4567", "639171234567", false},
		{"1234", "", true},
		{"+1 415 555 0100", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := normalizePhonePH(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("normalizePhonePH(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalizePhonePH(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("normalizePhonePH(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func validRegistration() RegisterResidentRequest {
	return RegisterResidentRequest{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Email:     "Juan@Example.com",
		Phone:     "09171234567",
		Password:  "longenough1",
	}
}

func TestRegister_NormalizesAndPublishesEvent(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	got := make(chan event.ResidentRegisteredPayload, 1)
	bus.Subscribe(event.EventResidentRegistered, func(payload any) {
		if p, ok := payload.(event.ResidentRegisteredPayload); ok {
			got <- p
		}
	})

	svc := NewResidentService(newFakeResidentRepo(), bus, nil)
	resident, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if resident.Email != "juan@example.com" {
		t.Fatalf("email not lowercased: %q", resident.Email)
	}
	if resident.Phone != "639171234567" {
		t.Fatalf("phone not normalized: %q", resident.Phone)
	}
	if resident.PasswordHash == "" || strings.Contains(resident.PasswordHash, "longenough1") {
		t.Fatalf("password not hashed")
	}
	if resident.VerificationToken == nil || *resident.VerificationToken == "" {
		t.Fatalf("verification token missing")
	}
	if resident.VerificationExpires == nil {
		t.Fatalf("verification expiry missing")
	}

	select {
	case payload := <-got:
		if payload.Token != *resident.VerificationToken {
			t.Fatalf("event token mismatch")
		}
	case <-time.After(time.Second):
		t.Fatalf("registration event not published")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := NewResidentService(newFakeResidentRepo(), nil, nil)
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(context.Background(), validRegistration()); err != ErrResidentExists {
		t.Fatalf("expected ErrResidentExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc := NewResidentService(newFakeResidentRepo(), nil, nil)

	short := validRegistration()
	short.Password = "short"
	if _, err := svc.Register(context.Background(), short); err != ErrInvalidResidentReq {
		t.Fatalf("expected ErrInvalidResidentReq for short password, got %v", err)
	}

	badPhone := validRegistration()
	badPhone.Phone = "12345"
	if _, err := svc.Register(context.Background(), badPhone); err != ErrInvalidPhone {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestVerify_Lifecycle(t *testing.T) {
	t.Parallel()

	repo := newFakeResidentRepo()
	svc := NewResidentService(repo, nil, nil)

	resident, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	verified, err := svc.Verify(context.Background(), *resident.VerificationToken)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !verified.EmailVerified {
		t.Fatalf("resident not marked verified")
	}

	if _, err := svc.Verify(context.Background(), "unknown-token"); err != ErrVerificationNotFound {
		t.Fatalf("expected ErrVerificationNotFound, got %v", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	t.Parallel()

	repo := newFakeResidentRepo()
	svc := NewResidentService(repo, nil, nil)

	resident, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	svc.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	if _, err := svc.Verify(context.Background(), *resident.VerificationToken); err != ErrVerificationExpired {
		t.Fatalf("expected ErrVerificationExpired, got %v", err)
	}
}

func TestResendVerification_RotatesToken(t *testing.T) {
	t.Parallel()

	repo := newFakeResidentRepo()
	svc := NewResidentService(repo, nil, nil)

	resident, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	firstToken := *resident.VerificationToken

	if err := svc.ResendVerification(context.Background(), resident.Email); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}

	stored, err := repo.FindByID(context.Background(), resident.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.VerificationToken == nil || *stored.VerificationToken == firstToken {
		t.Fatalf("token was not rotated")
	}
}
