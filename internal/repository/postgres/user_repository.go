package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

var _ repository.UserRepository = (*userRepository)(nil)

const userColumns = `
	id,
	email,
	password_hash,
	type,
	first_name,
	last_name,
	middle_name,
	phone,
	occupation,
	address,
	civil_status,
	birth_date,
	gender,
	house_number,
	street,
	purok,
	hall,
	emergency_contact,
	emergency_phone,
	avatar,
	created_at,
	updated_at
`

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	query := `
		INSERT INTO users (
			id, email, password_hash, type, first_name, last_name,
			middle_name, phone, occupation, address, civil_status,
			birth_date, gender, house_number, street, purok, hall,
			emergency_contact, emergency_phone, avatar, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22
		)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		u.ID,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Type,
		u.FirstName,
		u.LastName,
		u.MiddleName,
		u.Phone,
		u.Occupation,
		u.Address,
		u.CivilStatus,
		u.BirthDate,
		u.Gender,
		u.HouseNumber,
		u.Street,
		u.Purok,
		u.Hall,
		u.EmergencyContact,
		u.EmergencyPhone,
		u.Avatar,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users
		    SET first_name = $2,
		        last_name = $3,
		        middle_name = $4,
		        phone = $5,
		        occupation = $6,
		        address = $7,
		        civil_status = $8,
		        birth_date = $9,
		        gender = $10,
		        house_number = $11,
		        street = $12,
		        purok = $13,
		        hall = $14,
		        emergency_contact = $15,
		        emergency_phone = $16,
		        avatar = $17,
		        updated_at = $18
		  WHERE id = $1`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.MiddleName,
		u.Phone,
		u.Occupation,
		u.Address,
		u.CivilStatus,
		u.BirthDate,
		u.Gender,
		u.HouseNumber,
		u.Street,
		u.Purok,
		u.Hall,
		u.EmergencyContact,
		u.EmergencyPhone,
		u.Avatar,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *userRepository) CountByType(ctx context.Context, userType string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM users WHERE type = $1`,
		userType,
	).Scan(&count)
	return count, err
}

func scanUser(src scanTarget) (*model.User, error) {
	user := &model.User{}
	if err := src.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Type,
		&user.FirstName,
		&user.LastName,
		&user.MiddleName,
		&user.Phone,
		&user.Occupation,
		&user.Address,
		&user.CivilStatus,
		&user.BirthDate,
		&user.Gender,
		&user.HouseNumber,
		&user.Street,
		&user.Purok,
		&user.Hall,
		&user.EmergencyContact,
		&user.EmergencyPhone,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return user, nil
}
