package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type feedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) repository.FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

var _ repository.FeedbackRepository = (*feedbackRepository)(nil)

func (r *feedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	details, err := encodeJSONMap(f.Details)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO feedback (id, email, category, rating, message, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID,
		f.Email,
		f.Category,
		f.Rating,
		f.Message,
		details,
		f.CreatedAt,
	)
	return err
}

func (r *feedbackRepository) ListAll(ctx context.Context) ([]*model.Feedback, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, email, category, rating, message, details, created_at
		   FROM feedback
		  ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Feedback, 0, 32)
	for rows.Next() {
		item := &model.Feedback{}
		var rawDetails []byte
		if err := rows.Scan(
			&item.ID,
			&item.Email,
			&item.Category,
			&item.Rating,
			&item.Message,
			&rawDetails,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		details, err := decodeJSONMap(rawDetails)
		if err != nil {
			return nil, err
		}
		item.Details = details
		items = append(items, item)
	}
	return items, rows.Err()
}
