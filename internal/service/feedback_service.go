package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

var ErrInvalidFeedbackReq = errors.New("invalid feedback input")

type CreateFeedbackRequest struct {
	Email    string
	Category string
	Rating   int
	Message  string
	Details  map[string]any
}

type FeedbackService struct {
	repo   repository.FeedbackRepository
	logger *zap.Logger

	now func() time.Time
}

func NewFeedbackService(repo repository.FeedbackRepository, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FeedbackService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *FeedbackService) Create(ctx context.Context, req CreateFeedbackRequest) (*model.Feedback, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" || req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidFeedbackReq
	}

	feedback := &model.Feedback{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Category:  strings.TrimSpace(req.Category),
		Rating:    req.Rating,
		Message:   message,
		Details:   req.Details,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// ExportCSV renders every feedback record as one CSV document. Nested detail
// maps are flattened to dotted column names so spreadsheets get flat rows.
func (s *FeedbackService) ExportCSV(ctx context.Context) (filename string, body []byte, err error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", nil, err
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		record := map[string]any{
			"id":        item.ID.String(),
			"email":     item.Email,
			"category":  item.Category,
			"rating":    item.Rating,
			"message":   item.Message,
			"createdAt": item.CreatedAt,
		}
		for key, value := range item.Details {
			record["details."+key] = value
		}
		rows = append(rows, flattenForCSV(record, ""))
	}

	filename = fmt.Sprintf("resident-feedback-%s.csv", s.now().Format("2006-01-02"))
	body, err = renderCSV(rows)
	return filename, body, err
}

// flattenForCSV collapses a nested record into a single-level map with
// dotted keys. Slices become JSON-ish bracketed strings, times become
// RFC 3339, nil becomes the empty string.
func flattenForCSV(record map[string]any, prefix string) map[string]string {
	out := make(map[string]string, len(record))
	for key, value := range record {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		switch typed := value.(type) {
		case map[string]any:
			for k, v := range flattenForCSV(typed, name) {
				out[k] = v
			}
		case []any:
			parts := make([]string, 0, len(typed))
			for _, entry := range typed {
				parts = append(parts, csvScalar(entry))
			}
			out[name] = "[" + strings.Join(parts, ",") + "]"
		case nil:
			out[name] = ""
		default:
			out[name] = csvScalar(typed)
		}
	}
	return out
}

func csvScalar(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func renderCSV(rows []map[string]string) ([]byte, error) {
	if len(rows) == 0 {
		return []byte("\"No data\""), nil
	}

	seen := make(map[string]struct{})
	headers := make([]string, 0)
	for _, row := range rows {
		for key := range row {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, header := range headers {
			line[i] = row[header]
		}
		if err := writer.Write(line); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
