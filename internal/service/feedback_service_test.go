package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"barangay-hub/internal/model"
)

type fakeFeedbackRepo struct {
	mu    sync.Mutex
	items []*model.Feedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb *model.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *fb
	f.items = append(f.items, &clone)
	return nil
}

func (f *fakeFeedbackRepo) ListAll(_ context.Context) ([]*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Feedback, 0, len(f.items))
	for _, item := range f.items {
		clone := *item
		out = append(out, &clone)
	}
	return out, nil
}

func TestFlattenForCSV(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	flat := flattenForCSV(map[string]any{
		"id":      "abc",
		"rating":  5,
		"created": created,
		"nested": map[string]any{
			"device": "mobile",
			"deep":   map[string]any{"browser": "firefox"},
		},
		"tags":  []any{"a", "b"},
		"empty": nil,
	}, "")

	cases := map[string]string{
		"id":                  "abc",
		"rating":              "5",
		"created":             "2025-03-15T10:30:00Z",
		"nested.device":       "mobile",
		"nested.deep.browser": "firefox",
		"tags":                "[a,b]",
		"empty":               "",
	}
	for key, want := range cases {
		if got, ok := flat[key]; !ok || got != want {
			t.Fatalf("flat[%q] = %q (present=%v), want %q", key, got, ok, want)
		}
	}
}

func TestRenderCSV_EmptyAndData(t *testing.T) {
	t.Parallel()

	empty, err := renderCSV(nil)
	if err != nil {
		t.Fatalf("renderCSV returned error: %v", err)
	}
	if string(empty) != `"No data"` {
		t.Fatalf("expected \"No data\", got %q", string(empty))
	}

	body, err := renderCSV([]map[string]string{
		{"email": "a@example.com", "message": "good, thanks"},
		{"email": "b@example.com", "message": `say "hi"`},
	})
	if err != nil {
		t.Fatalf("renderCSV returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "email,message" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"good, thanks"`) {
		t.Fatalf("comma value not quoted: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"say ""hi"""`) {
		t.Fatalf("quotes not escaped: %q", lines[2])
	}
}

func TestExportCSV_FlattensDetails(t *testing.T) {
	t.Parallel()

	repo := &fakeFeedbackRepo{}
	svc := NewFeedbackService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC) }

	if _, err := svc.Create(context.Background(), CreateFeedbackRequest{
		Email:   "a@example.com",
		Rating:  4,
		Message: "smooth process",
		Details: map[string]any{"channel": "kiosk"},
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	filename, body, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV returned error: %v", err)
	}
	if filename != "resident-feedback-2025-03-15.csv" {
		t.Fatalf("unexpected filename: %s", filename)
	}

	content := string(body)
	if !strings.Contains(content, "details.channel") {
		t.Fatalf("details column missing: %s", content)
	}
	if !strings.Contains(content, "kiosk") {
		t.Fatalf("details value missing: %s", content)
	}
}

func TestCreateFeedback_Validation(t *testing.T) {
	t.Parallel()

	svc := NewFeedbackService(&fakeFeedbackRepo{}, nil)

	if _, err := svc.Create(context.Background(), CreateFeedbackRequest{Rating: 0, Message: "m"}); err != ErrInvalidFeedbackReq {
		t.Fatalf("expected ErrInvalidFeedbackReq for rating 0, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateFeedbackRequest{Rating: 6, Message: "m"}); err != ErrInvalidFeedbackReq {
		t.Fatalf("expected ErrInvalidFeedbackReq for rating 6, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateFeedbackRequest{Rating: 3, Message: " "}); err != ErrInvalidFeedbackReq {
		t.Fatalf("expected ErrInvalidFeedbackReq for empty message, got %v", err)
	}
}
