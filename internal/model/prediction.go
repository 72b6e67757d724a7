package model

import "time"

// Prediction kinds map to the document families produced by the offline
// forecasting pipeline. Documents are free-form; the analytics service
// normalizes them before anything reaches a client.
const (
	PredictionKindSummary         = "summary"
	PredictionKindHotspot         = "hotspot"
	PredictionKindServiceForecast = "service_forecast"
	PredictionKindAllocation      = "allocation"
	PredictionKindEmergency       = "emergency"
)

type PredictionDocument struct {
	ID            int64          `db:"id" json:"id"`
	Kind          string         `db:"kind" json:"kind"`
	Synthetic     bool           `db:"synthetic" json:"synthetic"`
	Payload       map[string]any `db:"payload" json:"payload"`
	DateGenerated time.Time      `db:"date_generated" json:"dateGenerated"`
}
