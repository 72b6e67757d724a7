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

type residentRepository struct {
	pool *pgxpool.Pool
}

func NewResidentRepository(pool *pgxpool.Pool) repository.ResidentRepository {
	return &residentRepository{pool: pool}
}

var _ repository.ResidentRepository = (*residentRepository)(nil)

const residentColumns = `
	id,
	first_name,
	last_name,
	middle_name,
	email,
	phone,
	birth_date,
	gender,
	civil_status,
	house_number,
	street,
	purok,
	barangay_hall,
	email_verified,
	verification_token,
	verification_expires,
	password_hash,
	created_at
`

func (r *residentRepository) Create(ctx context.Context, resident *model.Resident) error {
	if resident.ID == uuid.Nil {
		resident.ID = uuid.New()
	}
	if resident.CreatedAt.IsZero() {
		resident.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO residents (
			id, first_name, last_name, middle_name, email, phone,
			birth_date, gender, civil_status, house_number, street, purok,
			barangay_hall, email_verified, verification_token,
			verification_expires, password_hash, created_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18
		)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		resident.ID,
		resident.FirstName,
		resident.LastName,
		resident.MiddleName,
		strings.ToLower(resident.Email),
		resident.Phone,
		resident.BirthDate,
		resident.Gender,
		resident.CivilStatus,
		resident.HouseNumber,
		resident.Street,
		resident.Purok,
		resident.BarangayHall,
		resident.EmailVerified,
		resident.VerificationToken,
		resident.VerificationExpires,
		resident.PasswordHash,
		resident.CreatedAt,
	)
	return err
}

func (r *residentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *residentRepository) FindByEmail(ctx context.Context, email string) (*model.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE email = $1`
	return r.findOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *residentRepository) FindByVerificationToken(ctx context.Context, token string) (*model.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE verification_token = $1`
	return r.findOne(ctx, query, token)
}

func (r *residentRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM residents WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&count)
	return count, err
}

func (r *residentRepository) SetVerification(
	ctx context.Context,
	id uuid.UUID,
	token *string,
	expires *time.Time,
	verified bool,
) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE residents
		    SET verification_token = $2,
		        verification_expires = $3,
		        email_verified = $4
		  WHERE id = $1`,
		id,
		token,
		expires,
		verified,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *residentRepository) ClearExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE residents
		    SET verification_token = NULL,
		        verification_expires = NULL
		  WHERE email_verified = FALSE
		    AND verification_expires IS NOT NULL
		    AND verification_expires <= $1`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *residentRepository) findOne(ctx context.Context, query string, arg any) (*model.Resident, error) {
	resident, err := scanResident(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return resident, nil
}

func scanResident(src scanTarget) (*model.Resident, error) {
	resident := &model.Resident{}
	if err := src.Scan(
		&resident.ID,
		&resident.FirstName,
		&resident.LastName,
		&resident.MiddleName,
		&resident.Email,
		&resident.Phone,
		&resident.BirthDate,
		&resident.Gender,
		&resident.CivilStatus,
		&resident.HouseNumber,
		&resident.Street,
		&resident.Purok,
		&resident.BarangayHall,
		&resident.EmailVerified,
		&resident.VerificationToken,
		&resident.VerificationExpires,
		&resident.PasswordHash,
		&resident.CreatedAt,
	); err != nil {
		return nil, err
	}
	return resident, nil
}
