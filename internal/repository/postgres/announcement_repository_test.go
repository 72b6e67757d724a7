package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

func TestPublishDue_PromotesOnlyDueRows(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAnnouncementRepository(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := seedAnnouncement(t, ctx, repo, "due", false, &past, true)
	notDue := seedAnnouncement(t, ctx, repo, "not due", false, &future, true)
	alreadyPublished := seedAnnouncement(t, ctx, repo, "already published", true, nil, false)
	draft := seedAnnouncement(t, ctx, repo, "plain draft", false, nil, true)

	promoted, err := repo.PublishDue(ctx, now)
	if err != nil {
		t.Fatalf("PublishDue: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("expected 1 promoted row, got %d", promoted)
	}

	got, err := repo.FindByID(ctx, due.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !got.Published || got.PublishedSchedule != nil || got.Draft {
		t.Fatalf("promoted row not canonical: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at=%v, got %v", now, got.UpdatedAt)
	}

	got, err = repo.FindByID(ctx, notDue.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Published || got.PublishedSchedule == nil {
		t.Fatalf("future row must stay scheduled: %+v", got)
	}

	for _, untouched := range []*model.Announcement{alreadyPublished, draft} {
		got, err = repo.FindByID(ctx, untouched.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.State() != untouched.State() {
			t.Fatalf("sweep changed state of %q: %s -> %s", got.Title, untouched.State(), got.State())
		}
	}

	// The second sweep finds nothing left to promote.
	promoted, err = repo.PublishDue(ctx, now)
	if err != nil {
		t.Fatalf("PublishDue second pass: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("expected idempotent second sweep, got %d promoted", promoted)
	}
}

func TestListByState_PartitionsTriples(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAnnouncementRepository(pool)
	ctx := context.Background()

	future := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	seedAnnouncement(t, ctx, repo, "published one", true, nil, false)
	seedAnnouncement(t, ctx, repo, "scheduled one", false, &future, true)
	seedAnnouncement(t, ctx, repo, "draft one", false, nil, true)
	seedAnnouncement(t, ctx, repo, "draft two", false, nil, true)

	cases := []struct {
		state model.PublishState
		want  int
	}{
		{model.PublishStatePublished, 1},
		{model.PublishStateScheduled, 1},
		{model.PublishStateDraft, 2},
	}

	for _, tc := range cases {
		items, err := repo.ListByState(ctx, tc.state, repository.OrderUpdatedDesc)
		if err != nil {
			t.Fatalf("ListByState(%s): %v", tc.state, err)
		}
		if len(items) != tc.want {
			t.Fatalf("ListByState(%s): expected %d items, got %d", tc.state, tc.want, len(items))
		}
		for _, item := range items {
			if item.State() != tc.state {
				t.Fatalf("ListByState(%s) returned %s row %q", tc.state, item.State(), item.Title)
			}
		}
	}
}

func TestListByState_ScheduleAscOrder(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAnnouncementRepository(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	later := base.Add(2 * time.Hour)
	sooner := base.Add(time.Hour)
	seedAnnouncement(t, ctx, repo, "later", false, &later, true)
	seedAnnouncement(t, ctx, repo, "sooner", false, &sooner, true)

	items, err := repo.ListByState(ctx, model.PublishStateScheduled, repository.OrderScheduleAsc)
	if err != nil {
		t.Fatalf("ListByState: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 scheduled items, got %d", len(items))
	}
	if items[0].Title != "sooner" || items[1].Title != "later" {
		t.Fatalf("expected schedule-ascending order, got %q then %q", items[0].Title, items[1].Title)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	pool := startPostgresForTest(t)
	repo := NewAnnouncementRepository(pool)

	item, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func seedAnnouncement(
	t *testing.T,
	ctx context.Context,
	repo repository.AnnouncementRepository,
	title string,
	published bool,
	schedule *time.Time,
	draft bool,
) *model.Announcement {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	item := &model.Announcement{
		ID:                uuid.New(),
		Title:             title,
		Content:           "content for " + title,
		Published:         published,
		PublishedSchedule: schedule,
		Draft:             draft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("seed %q: %v", title, err)
	}
	return item
}

func startPostgresForTest(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "barangay_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/barangay_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	deadline := time.Now().Add(30 * time.Second)
	for {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres did not become ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	applyAllMigrations(t, ctx, pool)
	return pool
}

func applyAllMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join(findRepoRoot(t), "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		// #nosec G304 -- migration file list comes from controlled test directory.
		raw, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			t.Fatalf("read migration %s: %v", file, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			t.Fatalf("apply migration %s: %v", file, err)
		}
	}
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate repository root")
		}
		dir = parent
	}
}
