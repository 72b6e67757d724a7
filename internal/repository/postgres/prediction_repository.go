package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type predictionRepository struct {
	pool *pgxpool.Pool
}

func NewPredictionRepository(pool *pgxpool.Pool) repository.PredictionRepository {
	return &predictionRepository{pool: pool}
}

var _ repository.PredictionRepository = (*predictionRepository)(nil)

func (r *predictionRepository) Latest(
	ctx context.Context,
	kind string,
	synthetic bool,
) (*model.PredictionDocument, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, kind, synthetic, payload, date_generated
		   FROM predictions
		  WHERE kind = $1 AND synthetic = $2
		  ORDER BY date_generated DESC
		  LIMIT 1`,
		kind,
		synthetic,
	)

	doc, err := scanPrediction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *predictionRepository) ListByKind(
	ctx context.Context,
	kind string,
	synthetic bool,
) ([]*model.PredictionDocument, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, kind, synthetic, payload, date_generated
		   FROM predictions
		  WHERE kind = $1 AND synthetic = $2
		  ORDER BY date_generated DESC`,
		kind,
		synthetic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*model.PredictionDocument, 0, 8)
	for rows.Next() {
		doc, scanErr := scanPrediction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanPrediction(src scanTarget) (*model.PredictionDocument, error) {
	doc := &model.PredictionDocument{}
	var rawPayload []byte
	if err := src.Scan(
		&doc.ID,
		&doc.Kind,
		&doc.Synthetic,
		&rawPayload,
		&doc.DateGenerated,
	); err != nil {
		return nil, err
	}

	payload, err := decodeJSONMap(rawPayload)
	if err != nil {
		return nil, err
	}
	doc.Payload = payload
	return doc, nil
}
