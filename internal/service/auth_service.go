package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
	jwtutil "barangay-hub/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserReq     = errors.New("invalid user input")
)

const sessionTTL = 7 * 24 * time.Hour

type RegisterUserRequest struct {
	Email     string
	Password  string
	Type      string
	FirstName string
	LastName  string
	Phone     string
}

type UpdateProfileRequest struct {
	FirstName        *string
	LastName         *string
	MiddleName       *string
	Phone            *string
	Occupation       *string
	Address          *string
	CivilStatus      *string
	BirthDate        *string
	Gender           *string
	HouseNumber      *string
	Street           *string
	Purok            *string
	Hall             *string
	EmergencyContact *string
	EmergencyPhone   *string
	Avatar           *string
}

type AuthService struct {
	users  repository.UserRepository
	secret string
	logger *zap.Logger

	now func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		users:  users,
		secret: secret,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SessionTTL is how long issued tokens and cookies stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return sessionTTL
}

func (s *AuthService) Register(ctx context.Context, req RegisterUserRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", ErrInvalidUserReq
	}
	if len(req.Password) < 8 {
		return nil, "", ErrInvalidUserReq
	}

	userType := strings.TrimSpace(req.Type)
	if userType != model.UserTypeStaff {
		userType = model.UserTypeResident
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Type:         userType,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	claims := jwtutil.NewClaims(user.ID.String(), user.Email, user.Type, sessionTTL)
	return jwtutil.GenerateToken(claims, s.secret)
}

func (s *AuthService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, ErrInvalidUserReq
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.FirstName, req.FirstName)
	apply(&user.LastName, req.LastName)
	apply(&user.MiddleName, req.MiddleName)
	apply(&user.Phone, req.Phone)
	apply(&user.Occupation, req.Occupation)
	apply(&user.Address, req.Address)
	apply(&user.CivilStatus, req.CivilStatus)
	apply(&user.BirthDate, req.BirthDate)
	apply(&user.Gender, req.Gender)
	apply(&user.HouseNumber, req.HouseNumber)
	apply(&user.Street, req.Street)
	apply(&user.Purok, req.Purok)
	apply(&user.Hall, req.Hall)
	apply(&user.EmergencyContact, req.EmergencyContact)
	apply(&user.EmergencyPhone, req.EmergencyPhone)
	apply(&user.Avatar, req.Avatar)
	user.UpdatedAt = s.now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
