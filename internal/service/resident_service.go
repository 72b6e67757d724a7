package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"barangay-hub/internal/event"
	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
	jwtutil "barangay-hub/pkg/jwt"
)

var (
	ErrResidentNotFound        = errors.New("resident not found")
	ErrResidentExists          = errors.New("resident already registered")
	ErrInvalidResidentReq      = errors.New("invalid resident input")
	ErrInvalidPhone            = errors.New("invalid philippine mobile number")
	ErrVerificationExpired     = errors.New("verification token expired")
	ErrVerificationNotFound    = errors.New("verification token not found")
	ErrResidentAlreadyVerified = errors.New("resident already verified")
)

const verificationTTL = 24 * time.Hour

type RegisterResidentRequest struct {
	FirstName    string
	LastName     string
	MiddleName   string
	Email        string
	Phone        string
	Password     string
	BirthDate    string
	Gender       string
	CivilStatus  string
	HouseNumber  string
	Street       string
	Purok        string
	BarangayHall string
}

type ResidentService struct {
	repo   repository.ResidentRepository
	bus    *event.Bus
	logger *zap.Logger

	now func() time.Time
}

func NewResidentService(repo repository.ResidentRepository, bus *event.Bus, logger *zap.Logger) *ResidentService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResidentService{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// normalizePhonePH canonicalizes a Philippine mobile number to the
// international 63XXXXXXXXXX form. Accepted inputs: 09XXXXXXXXX,
// 9XXXXXXXXX, 639XXXXXXXXX and the same with a leading plus or spacing.
func normalizePhonePH(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	switch {
	case len(number) == 11 && strings.HasPrefix(number, "09"):
		number = "63" + number[1:]
	case len(number) == 10 && strings.HasPrefix(number, "9"):
		number = "63" + number
	}

	if len(number) != 12 || !strings.HasPrefix(number, "639") {
		return "", ErrInvalidPhone
	}
	return number, nil
}

func (s *ResidentService) Register(ctx context.Context, req RegisterResidentRequest) (*model.Resident, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if firstName == "" || lastName == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidResidentReq
	}
	if len(req.Password) < 8 {
		return nil, ErrInvalidResidentReq
	}

	phone, err := normalizePhonePH(req.Phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.CountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrResidentExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(verificationTTL)
	resident := &model.Resident{
		ID:                  uuid.New(),
		FirstName:           firstName,
		LastName:            lastName,
		MiddleName:          strings.TrimSpace(req.MiddleName),
		Email:               email,
		Phone:               phone,
		BirthDate:           strings.TrimSpace(req.BirthDate),
		Gender:              strings.TrimSpace(req.Gender),
		CivilStatus:         strings.TrimSpace(req.CivilStatus),
		HouseNumber:         strings.TrimSpace(req.HouseNumber),
		Street:              strings.TrimSpace(req.Street),
		Purok:               strings.TrimSpace(req.Purok),
		BarangayHall:        strings.TrimSpace(req.BarangayHall),
		VerificationToken:   &token,
		VerificationExpires: &expires,
		PasswordHash:        string(hash),
		CreatedAt:           now,
	}

	if err := s.repo.Create(ctx, resident); err != nil {
		return nil, err
	}

	// Registration succeeds even when the verification mail cannot be sent;
	// the subscriber handles delivery and retries on its own.
	if s.bus != nil {
		s.bus.Publish(event.EventResidentRegistered, event.ResidentRegisteredPayload{
			ResidentID: resident.ID.String(),
			Email:      resident.Email,
			FirstName:  resident.FirstName,
			Phone:      resident.Phone,
			Token:      token,
		})
	}

	return resident, nil
}

// EmailExists reports whether an email is already registered. Used by the
// signup form for inline duplicate checks.
func (s *ResidentService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, ErrInvalidResidentReq
	}

	count, err := s.repo.CountByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ResidentService) Verify(ctx context.Context, token string) (*model.Resident, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrVerificationNotFound
	}

	resident, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}

	if resident.VerificationExpires != nil && resident.VerificationExpires.Before(s.now()) {
		return nil, ErrVerificationExpired
	}

	if err := s.repo.SetVerification(ctx, resident.ID, nil, nil, true); err != nil {
		return nil, err
	}

	resident.EmailVerified = true
	resident.VerificationToken = nil
	resident.VerificationExpires = nil
	return resident, nil
}

func (s *ResidentService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrInvalidResidentReq
	}

	resident, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResidentNotFound
		}
		return err
	}
	if resident.EmailVerified {
		return ErrResidentAlreadyVerified
	}

	token, err := jwtutil.GenerateOpaqueToken()
	if err != nil {
		return err
	}

	expires := s.now().Add(verificationTTL)
	if err := s.repo.SetVerification(ctx, resident.ID, &token, &expires, false); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(event.EventVerificationRequested, event.VerificationRequestedPayload{
			ResidentID: resident.ID.String(),
			Email:      resident.Email,
			FirstName:  resident.FirstName,
			Token:      token,
		})
	}
	return nil
}

func (s *ResidentService) GetByID(ctx context.Context, residentID string) (*model.Resident, error) {
	id, err := uuid.Parse(strings.TrimSpace(residentID))
	if err != nil {
		return nil, ErrInvalidResidentReq
	}

	resident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return resident, nil
}

// PruneExpiredVerifications drops stale verification tokens. Run from the
// scheduler.
func (s *ResidentService) PruneExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ClearExpiredVerifications(ctx, now)
}
