package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"barangay-hub/internal/model"
	"barangay-hub/internal/repository"
)

const defaultEfficiency = 75.0

// AnalyticsService reads the heterogeneous prediction documents written by
// the offline forecasting pipeline and normalizes them into shapes the web
// dashboard can render blindly: every array is non-nil, every number has a
// fallback, and a broken or empty store degrades to safe defaults instead
// of an error response.
type AnalyticsService struct {
	predictions repository.PredictionRepository
	synthetic   bool
	logger      *zap.Logger

	now func() time.Time
}

func NewAnalyticsService(predictions repository.PredictionRepository, synthetic bool, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnalyticsService{
		predictions: predictions,
		synthetic:   synthetic,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalyticsService) MLInsights(ctx context.Context) map[string]any {
	overallEfficiency := defaultEfficiency
	recommendations := []string{}
	hotspots := []map[string]any{}
	serviceDemand := []map[string]any{}
	resourceAllocation := []map[string]any{}
	emergencyPredictions := []map[string]any{}
	priorityServices := []string{}
	lastUpdated := ""

	if summary, err := s.predictions.Latest(ctx, model.PredictionKindSummary, s.synthetic); err == nil {
		overallEfficiency = asFloat(summary.Payload["system_efficiency"], defaultEfficiency)
		recommendations = asStringSlice(summary.Payload["ai_recommendations"])
		lastUpdated = summary.DateGenerated.UTC().Format(time.RFC3339)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("read prediction summary failed", zap.Error(err))
	}

	if docs, err := s.predictions.ListByKind(ctx, model.PredictionKindHotspot, s.synthetic); err == nil {
		for _, doc := range docs {
			issues := asStringSlice(doc.Payload["common_issues"])
			top := issues
			if len(top) > 3 {
				top = top[:3]
			}
			hotspots = append(hotspots, map[string]any{
				"location":            asString(doc.Payload["hall"], ""),
				"riskScore":           asFloat(doc.Payload["risk_score"], 0),
				"predictedComplaints": asFloat(doc.Payload["predicted_count"], 0),
				"commonIssues":        issues,
				"recommendedActions":  asStringSlice(doc.Payload["recommended_actions"]),
				"peakHours":           []int{},
				"priorityServices":    top,
			})
		}
	} else {
		s.logger.Warn("read hotspot predictions failed", zap.Error(err))
	}

	if docs, err := s.predictions.ListByKind(ctx, model.PredictionKindServiceForecast, s.synthetic); err == nil {
		for _, doc := range docs {
			svc := asString(doc.Payload["service"], "Unknown")
			forecast, total := normalizeForecast(doc.Payload["forecast"])

			// Default peak hours per service so bar charts always render.
			peak := []int{8, 14, 19}
			if strings.Contains(strings.ToLower(svc), "document") {
				peak = []int{9, 12, 16}
			}

			serviceDemand = append(serviceDemand, map[string]any{
				"service":          svc,
				"predictedDemand":  round2(total),
				"forecast":         forecast,
				"peakHours":        peak,
				"priorityServices": []string{svc},
			})
		}

		priorityServices = topServicesByDemand(serviceDemand, 3)
	} else {
		s.logger.Warn("read service forecasts failed", zap.Error(err))
	}

	if docs, err := s.predictions.ListByKind(ctx, model.PredictionKindAllocation, s.synthetic); err == nil {
		for _, doc := range docs {
			svc := asString(doc.Payload["service"], "Unknown")
			resourceAllocation = append(resourceAllocation, map[string]any{
				"hall":             asString(doc.Payload["hall"], ""),
				"service":          svc,
				"predictedDemand":  round2(asFloat(doc.Payload["predicted_demand"], 0)),
				"recommendedStaff": asInt(doc.Payload["recommended_staff"], 1),
				"efficiency":       asFloat(doc.Payload["efficiency"], 70),
				"bottlenecks":      asStringSlice(doc.Payload["bottlenecks"]),
				"peakHours":        []int{},
				"priorityServices": []string{svc},
			})
		}
	} else {
		s.logger.Warn("read allocation predictions failed", zap.Error(err))
	}

	if docs, err := s.predictions.ListByKind(ctx, model.PredictionKindEmergency, s.synthetic); err == nil {
		for _, doc := range docs {
			class := asString(doc.Payload["class"], "Unknown")
			emergencyPredictions = append(emergencyPredictions, map[string]any{
				"type":                  class,
				"location":              asString(doc.Payload["hall"], ""),
				"probability":           asFloat(doc.Payload["probability"], 0),
				"estimatedResponseTime": asFloat(doc.Payload["estimated_response_time_min"], 0),
				"requiredResources":     asStringSlice(doc.Payload["required_resources"]),
				"preventiveMeasures":    asStringSlice(doc.Payload["preventive_measures"]),
				"peakHours":             []int{},
				"priorityServices":      []string{class},
			})
		}
	} else {
		s.logger.Warn("read emergency predictions failed", zap.Error(err))
	}

	// The forecast alias carries a trimmed view of the same packs; some
	// dashboard panels read one key, some the other.
	serviceForecast := make([]map[string]any, 0, len(serviceDemand))
	for _, pack := range serviceDemand {
		serviceForecast = append(serviceForecast, map[string]any{
			"service":          pack["service"],
			"forecast":         pack["forecast"],
			"peakHours":        pack["peakHours"],
			"priorityServices": pack["priorityServices"],
		})
	}

	return map[string]any{
		"overallEfficiency":    overallEfficiency,
		"hotspots":             hotspots,
		"hotspotAreas":         hotspots,
		"serviceDemand":        serviceDemand,
		"serviceForecast":      serviceForecast,
		"resourceAllocation":   resourceAllocation,
		"emergencyPredictions": emergencyPredictions,
		"recommendations":      recommendations,
		"priorityServices":     priorityServices,
		"lastUpdated":          lastUpdated,
		"serverTime":           s.now().Format(time.RFC3339),
	}
}

func (s *AnalyticsService) Trends(ctx context.Context) map[string]any {
	forecasts := []map[string]any{}
	totalMean := 0.0

	if docs, err := s.predictions.ListByKind(ctx, model.PredictionKindServiceForecast, s.synthetic); err == nil {
		for _, doc := range docs {
			svc := asString(doc.Payload["service"], "Unknown")
			forecast, total := normalizeForecast(doc.Payload["forecast"])
			totalMean += total
			forecasts = append(forecasts, map[string]any{
				"service":          svc,
				"used_model":       asString(doc.Payload["used_model"], "baseline"),
				"forecast":         forecast,
				"peakHours":        []int{},
				"priorityServices": []string{svc},
			})
		}
	} else {
		s.logger.Warn("read service forecasts failed", zap.Error(err))
	}

	services := make([]string, 0, 3)
	for _, pack := range forecasts {
		if len(services) == 3 {
			break
		}
		services = append(services, asString(pack["service"], "Unknown"))
	}

	return map[string]any{
		"forecasts": forecasts,
		"series":    forecasts,
		"data":      forecasts,
		"narrative": "7-day outlook based on last 28-day seasonal baseline.",
		"stats": map[string]any{
			"comparedRange": "last 28 days",
			"totalMean":     round2(totalMean),
		},
		"priorityServices": services,
	}
}

// normalizeForecast coerces a raw forecast array into well-typed points and
// returns the summed predicted demand.
func normalizeForecast(raw any) ([]map[string]any, float64) {
	points := []map[string]any{}
	total := 0.0

	entries, ok := raw.([]any)
	if !ok {
		return points, total
	}

	for _, entry := range entries {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		yhat := asFloat(item["yhat"], 0)
		total += yhat
		points = append(points, map[string]any{
			"date":       asString(item["date"], ""),
			"yhat":       yhat,
			"yhat_lower": asFloat(item["yhat_lower"], 0),
			"yhat_upper": asFloat(item["yhat_upper"], 0),
		})
	}
	return points, total
}

func topServicesByDemand(packs []map[string]any, limit int) []string {
	sorted := make([]map[string]any, len(packs))
	copy(sorted, packs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return asFloat(sorted[i]["predictedDemand"], 0) > asFloat(sorted[j]["predictedDemand"], 0)
	})

	out := make([]string, 0, limit)
	for _, pack := range sorted {
		if len(out) == limit {
			break
		}
		out = append(out, asString(pack["service"], "Unknown"))
	}
	return out
}

func asFloat(v any, fallback float64) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}

func asInt(v any, fallback int) int {
	f := asFloat(v, math.NaN())
	if math.IsNaN(f) {
		return fallback
	}
	return int(f)
}

func asString(v any, fallback string) string {
	switch value := v.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case nil:
		return fallback
	}
	return fallback
}

func asStringSlice(v any) []string {
	out := []string{}
	entries, ok := v.([]any)
	if !ok {
		return out
	}
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
