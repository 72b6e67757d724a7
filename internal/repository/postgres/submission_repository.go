package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type submissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) repository.SubmissionRepository {
	return &submissionRepository{pool: pool}
}

var _ repository.SubmissionRepository = (*submissionRepository)(nil)

const submissionColumns = `
	id,
	reference_id,
	name,
	email,
	submission_type,
	type,
	priority,
	subject,
	message,
	phone,
	address,
	location,
	hall,
	anonymous,
	urgent,
	sms_notifications,
	evidence_url,
	status,
	created_at
`

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO submissions (
			id, reference_id, name, email, submission_type, type,
			priority, subject, message, phone, address, location,
			hall, anonymous, urgent, sms_notifications, evidence_url,
			status, created_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19
		)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		s.ID,
		s.ReferenceID,
		s.Name,
		strings.ToLower(s.Email),
		s.SubmissionType,
		s.Type,
		s.Priority,
		s.Subject,
		s.Message,
		s.Phone,
		s.Address,
		s.Location,
		s.Hall,
		s.Anonymous,
		s.Urgent,
		s.SMSNotifications,
		s.EvidenceURL,
		s.Status,
		s.CreatedAt,
	)
	return err
}

func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	item, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *submissionRepository) List(
	ctx context.Context,
	filter repository.SubmissionListFilter,
) ([]*model.Submission, error) {
	where, args := buildSubmissionWhere(filter)
	limit, offset := normalizePagination(filter.Pagination)

	query := fmt.Sprintf(
		`SELECT %s FROM submissions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		submissionColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Submission, 0, limit)
	for rows.Next() {
		item, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *submissionRepository) ListAllByEmail(
	ctx context.Context,
	email string,
) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE email = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Submission, 0, 16)
	for rows.Next() {
		item, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *submissionRepository) Count(
	ctx context.Context,
	filter repository.SubmissionListFilter,
) (int64, error) {
	where, args := buildSubmissionWhere(filter)

	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions `+where, args...).Scan(&count)
	return count, err
}

func buildSubmissionWhere(filter repository.SubmissionListFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Email != nil {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Email)))
		clauses = append(clauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.SubmissionType != nil {
		args = append(args, *filter.SubmissionType)
		clauses = append(clauses, fmt.Sprintf("LOWER(submission_type) = LOWER($%d)", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("LOWER(status) = LOWER($%d)", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanSubmission(src scanTarget) (*model.Submission, error) {
	item := &model.Submission{}
	if err := src.Scan(
		&item.ID,
		&item.ReferenceID,
		&item.Name,
		&item.Email,
		&item.SubmissionType,
		&item.Type,
		&item.Priority,
		&item.Subject,
		&item.Message,
		&item.Phone,
		&item.Address,
		&item.Location,
		&item.Hall,
		&item.Anonymous,
		&item.Urgent,
		&item.SMSNotifications,
		&item.EvidenceURL,
		&item.Status,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	return item, nil
}
