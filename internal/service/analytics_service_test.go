package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

type fakePredictionRepo struct {
	latest map[string]*model.PredictionDocument
	lists  map[string][]*model.PredictionDocument
	err    error
}

func (f *fakePredictionRepo) Latest(_ context.Context, kind string, _ bool) (*model.PredictionDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.latest[kind]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

func (f *fakePredictionRepo) ListByKind(_ context.Context, kind string, _ bool) ([]*model.PredictionDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[kind], nil
}

func TestMLInsights_BrokenStoreDegradesToDefaults(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(&fakePredictionRepo{err: errors.New("connection refused")}, true, nil)
	out := svc.MLInsights(context.Background())

	if got := out["overallEfficiency"]; got != defaultEfficiency {
		t.Fatalf("expected default efficiency %v, got %v", defaultEfficiency, got)
	}
	for _, key := range []string{"hotspots", "serviceDemand", "resourceAllocation", "emergencyPredictions", "recommendations", "priorityServices"} {
		value, ok := out[key]
		if !ok || value == nil {
			t.Fatalf("key %q missing or nil", key)
		}
	}
	if hotspots, ok := out["hotspots"].([]map[string]any); !ok || hotspots == nil {
		t.Fatalf("hotspots is not a non-nil slice: %T", out["hotspots"])
	}
}

func TestMLInsights_NormalizesDocuments(t *testing.T) {
	t.Parallel()

	generated := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	repo := &fakePredictionRepo{
		latest: map[string]*model.PredictionDocument{
			model.PredictionKindSummary: {
				Kind: model.PredictionKindSummary,
				Payload: map[string]any{
					"system_efficiency":  88.5,
					"ai_recommendations": []any{"add staff at hall A"},
				},
				DateGenerated: generated,
			},
		},
		lists: map[string][]*model.PredictionDocument{
			model.PredictionKindHotspot: {{
				Kind: model.PredictionKindHotspot,
				Payload: map[string]any{
					"hall":            "Hall A",
					"risk_score":      0.83,
					"predicted_count": float64(12),
					"common_issues":   []any{"noise", "garbage", "flooding", "parking"},
				},
			}},
			model.PredictionKindAllocation: {{
				Kind: model.PredictionKindAllocation,
				Payload: map[string]any{
					"hall":    "Hall B",
					"service": "Clearance",
					// recommended_staff and efficiency intentionally absent
					"predicted_demand": 10.123,
				},
			}},
			model.PredictionKindServiceForecast: {{
				Kind: model.PredictionKindServiceForecast,
				Payload: map[string]any{
					"service": "Document Request",
					"forecast": []any{
						map[string]any{"date": "2025-04-02", "yhat": 3.5},
						map[string]any{"date": "2025-04-03", "yhat": "4.5"},
					},
				},
			}},
		},
	}

	svc := NewAnalyticsService(repo, true, nil)
	out := svc.MLInsights(context.Background())

	if got := out["overallEfficiency"]; got != 88.5 {
		t.Fatalf("expected efficiency 88.5, got %v", got)
	}
	if got := out["lastUpdated"]; got != generated.Format(time.RFC3339) {
		t.Fatalf("unexpected lastUpdated: %v", got)
	}

	hotspots := out["hotspots"].([]map[string]any)
	if len(hotspots) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(hotspots))
	}
	priority := hotspots[0]["priorityServices"].([]string)
	if len(priority) != 3 {
		t.Fatalf("priorityServices should cap at 3, got %d", len(priority))
	}

	allocation := out["resourceAllocation"].([]map[string]any)[0]
	if got := allocation["recommendedStaff"]; got != 1 {
		t.Fatalf("expected staff fallback 1, got %v", got)
	}
	if got := allocation["efficiency"]; got != 70.0 {
		t.Fatalf("expected efficiency fallback 70, got %v", got)
	}

	demand := out["serviceDemand"].([]map[string]any)[0]
	if got := demand["predictedDemand"]; got != 8.0 {
		t.Fatalf("expected summed demand 8, got %v", got)
	}
	peak := demand["peakHours"].([]int)
	if len(peak) == 0 {
		t.Fatalf("peakHours should have defaults")
	}
}

func TestTrends_AlwaysReturnsArrays(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(&fakePredictionRepo{}, true, nil)
	out := svc.Trends(context.Background())

	for _, key := range []string{"forecasts", "series", "data", "priorityServices"} {
		if out[key] == nil {
			t.Fatalf("key %q is nil", key)
		}
	}
	stats := out["stats"].(map[string]any)
	if stats["totalMean"] != 0.0 {
		t.Fatalf("expected totalMean 0, got %v", stats["totalMean"])
	}
}

func TestCoercionHelpers(t *testing.T) {
	t.Parallel()

	if got := asFloat("12.5", 0); got != 12.5 {
		t.Fatalf("asFloat string: got %v", got)
	}
	if got := asFloat(nil, 75); got != 75.0 {
		t.Fatalf("asFloat nil fallback: got %v", got)
	}
	if got := asInt("bogus", 1); got != 1 {
		t.Fatalf("asInt fallback: got %v", got)
	}
	if got := asString(3.0, "x"); got != "3" {
		t.Fatalf("asString float: got %q", got)
	}
	if got := asStringSlice("not a slice"); got == nil || len(got) != 0 {
		t.Fatalf("asStringSlice should return empty non-nil slice, got %#v", got)
	}
}
