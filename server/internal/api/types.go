package api

import (
	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/history"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State        string         `json:"state"`
	AverageScore float64        `json:"average_score"`
	Locale       string         `json:"locale"`
	SessionCount int            `json:"session_count"`
	WaterCount   int            `json:"water_count"`
	AirCount     int            `json:"air_count"`
	Monitoring   int            `json:"monitoring_count"`
	PotableCount int            `json:"potable_count"`
	ByGrade      map[string]int `json:"by_classification"`
	ByAQI        map[string]int `json:"by_aqi"`
	AlertCount   int            `json:"alert_count"`
}

// SessionResponse is one session in GET /api/v1/sessions or
// GET /api/v1/sessions/{id}. Only the fields for the session's lab are set.
type SessionResponse struct {
	ID          string                `json:"id"`
	Lab         types.Lab             `json:"lab"`
	Monitoring  bool                  `json:"monitoring"`
	Water       *types.Measurement    `json:"water,omitempty"`
	Result      *quality.Result       `json:"result,omitempty"`
	Air         *types.AirMeasurement `json:"air,omitempty"`
	AirResult   *quality.AirResult    `json:"air_result,omitempty"`
	HistoryLen  int                   `json:"history_len"`
	CreatedAt   string                `json:"created_at"` // RFC3339
	LastUpdated string                `json:"last_updated"`
}

// HistoryResponse is the payload for GET /api/v1/sessions/{id}/history.
type HistoryResponse struct {
	SessionID string                 `json:"session_id"`
	Lab       types.Lab              `json:"lab"`
	Water     []types.Measurement    `json:"water,omitempty"`
	Air       []types.AirMeasurement `json:"air,omitempty"`
}

// ChartResponse is the payload for GET /api/v1/sessions/{id}/chart.
type ChartResponse struct {
	SessionID string               `json:"session_id"`
	Points    []history.ChartPoint `json:"points"`
}

// ReportResponse is the payload for GET /api/v1/sessions/{id}/report.
type ReportResponse struct {
	SessionID       string       `json:"session_id"`
	Lab             types.Lab    `json:"lab"`
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Hints           []ReportHint `json:"hints"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the data of
// every WebSocket broadcast.
type SnapshotResponse struct {
	Sessions    []SessionResponse `json:"sessions"`
	AlertCount  int               `json:"alert_count"`
	GeneratedAt string            `json:"generated_at"` // RFC3339
}

type createSessionRequest struct {
	ID  string    `json:"id,omitempty"`
	Lab types.Lab `json:"lab"`
}

type monitorRequest struct {
	Active *bool `json:"active"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
