package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type announcementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) repository.AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

var _ repository.AnnouncementRepository = (*announcementRepository)(nil)

const announcementColumns = `
	id,
	title,
	content,
	category,
	priority,
	hall,
	event_date,
	event_time,
	expected_attendees,
	tags,
	published,
	published_schedule,
	draft,
	created_by_name,
	created_by_email,
	created_at,
	updated_at
`

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `
		INSERT INTO announcements (
			id, title, content, category, priority, hall,
			event_date, event_time, expected_attendees, tags,
			published, published_schedule, draft,
			created_by_name, created_by_email, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17
		)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		a.ID,
		a.Title,
		a.Content,
		a.Category,
		a.Priority,
		a.Hall,
		a.EventDate,
		a.EventTime,
		a.ExpectedAttendees,
		a.Tags,
		a.Published,
		a.PublishedSchedule,
		a.Draft,
		a.CreatedByName,
		a.CreatedByEmail,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	item, err := scanAnnouncement(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	query := `
		UPDATE announcements
		   SET title = $2,
		       content = $3,
		       category = $4,
		       priority = $5,
		       hall = $6,
		       event_date = $7,
		       event_time = $8,
		       expected_attendees = $9,
		       tags = $10,
		       published = $11,
		       published_schedule = $12,
		       draft = $13,
		       updated_at = $14
		 WHERE id = $1
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		a.ID,
		a.Title,
		a.Content,
		a.Category,
		a.Priority,
		a.Hall,
		a.EventDate,
		a.EventTime,
		a.ExpectedAttendees,
		a.Tags,
		a.Published,
		a.PublishedSchedule,
		a.Draft,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *announcementRepository) ListByState(
	ctx context.Context,
	state model.PublishState,
	order repository.AnnouncementOrder,
) ([]*model.Announcement, error) {
	var where string
	switch state {
	case model.PublishStatePublished:
		where = `published = TRUE`
	case model.PublishStateScheduled:
		where = `published = FALSE AND published_schedule IS NOT NULL`
	default:
		where = `published = FALSE AND published_schedule IS NULL`
	}

	orderBy := `updated_at DESC`
	switch order {
	case repository.OrderScheduleAsc:
		orderBy = `published_schedule ASC`
	case repository.OrderCreatedDesc:
		orderBy = `created_at DESC`
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE `+where+` ORDER BY `+orderBy,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Announcement, 0, 16)
	for rows.Next() {
		item, scanErr := scanAnnouncement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PublishDue is the sweep statement: one conditional bulk update, atomic per
// matched row, that never touches already-published records. Running it
// twice in a row is a no-op the second time.
func (r *announcementRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE announcements
		    SET published = TRUE,
		        published_schedule = NULL,
		        draft = FALSE,
		        updated_at = $1
		  WHERE published = FALSE
		    AND published_schedule IS NOT NULL
		    AND published_schedule <= $1`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAnnouncement(src scanTarget) (*model.Announcement, error) {
	item := &model.Announcement{}
	if err := src.Scan(
		&item.ID,
		&item.Title,
		&item.Content,
		&item.Category,
		&item.Priority,
		&item.Hall,
		&item.EventDate,
		&item.EventTime,
		&item.ExpectedAttendees,
		&item.Tags,
		&item.Published,
		&item.PublishedSchedule,
		&item.Draft,
		&item.CreatedByName,
		&item.CreatedByEmail,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return item, nil
}
