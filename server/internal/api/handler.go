package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
	"github.com/ecolab/ecolab/server/internal/alerts"
	"github.com/ecolab/ecolab/server/internal/history"
	"github.com/ecolab/ecolab/server/internal/lab"
	"github.com/ecolab/ecolab/server/internal/metrics"
	"github.com/ecolab/ecolab/server/internal/store"
)

// maxBodyBytes caps request bodies; every payload here is a handful of numbers.
const maxBodyBytes = 64 << 10

// AlertSource is the read side of the alert engine.
type AlertSource interface {
	Active() []*alerts.Alert
	FiringCount() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	svc    *lab.Service
	alerts AlertSource
	mux    *http.ServeMux
}

// New creates a Handler wired to the lab service and registers all routes.
// al may be nil, in which case alert endpoints report nothing.
func New(svc *lab.Service, al AlertSource) http.Handler {
	h := &Handler{svc: svc, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/evaluate/water", h.evaluateWater)
	h.mux.HandleFunc("/api/v1/evaluate/air", h.evaluateAir)
	h.mux.HandleFunc("/api/v1/sessions", h.sessions)
	h.mux.HandleFunc("/api/v1/sessions/", h.session) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessions := h.svc.List()
	resp := HealthResponse{
		Locale:       string(h.svc.Locale()),
		SessionCount: len(sessions),
		ByGrade:      make(map[string]int),
		ByAQI:        make(map[string]int),
		AlertCount:   h.firing(),
	}

	var totalScore, water int
	for _, s := range sessions {
		if s.Monitoring {
			resp.Monitoring++
		}
		switch s.Lab {
		case types.LabAir:
			resp.AirCount++
			resp.ByAQI[s.AirResult.Level.Key()]++
		default:
			resp.WaterCount++
			water++
			totalScore += s.WaterResult.OverallScore
			resp.ByGrade[s.WaterResult.Classification.Key()]++
			if s.WaterResult.Potable {
				resp.PotableCount++
			}
		}
	}
	if water > 0 {
		resp.AverageScore = float64(totalScore) / float64(water)
	}

	switch {
	case len(sessions) == 0:
		resp.State = "idle"
	case resp.AlertCount > 0:
		resp.State = "alerting"
	default:
		resp.State = "ok"
	}
	jsonResp(w, http.StatusOK, resp)
}

// evaluateWater returns POST /api/v1/evaluate/water, a stateless grading.
func (h *Handler) evaluateWater(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var m types.Measurement
	if !decodeBody(w, r, &m) {
		return
	}
	res, err := h.svc.EvaluateWater(m)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, res)
}

// evaluateAir returns POST /api/v1/evaluate/air, a stateless grading.
func (h *Handler) evaluateAir(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var m types.AirMeasurement
	if !decodeBody(w, r, &m) {
		return
	}
	res, err := h.svc.EvaluateAir(m)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, res)
}

// sessions handles GET (list) and POST (create) on /api/v1/sessions.
func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list := h.svc.List()
		out := make([]SessionResponse, 0, len(list))
		for _, s := range list {
			out = append(out, toSessionResponse(s))
		}
		jsonResp(w, http.StatusOK, out)

	case http.MethodPost:
		var req createSessionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s, err := h.svc.CreateSession(req.ID, req.Lab)
		if err != nil {
			jsonErr(w, statusFor(err), err.Error())
			return
		}
		jsonResp(w, http.StatusCreated, toSessionResponse(s))

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// session dispatches /api/v1/sessions/{id}[/action].
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/"), "/")
	if rest == "" {
		h.sessions(w, r)
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
		if r.Method == http.MethodDelete {
			h.deleteSession(w, id)
			return
		}
		h.getSession(w, r, id)
	case "measurement":
		h.putMeasurement(w, r, id)
	case "monitor":
		h.setMonitor(w, r, id)
	case "reset":
		h.reset(w, r, id)
	case "history":
		h.history(w, r, id)
	case "chart":
		h.chart(w, r, id)
	case "report":
		h.report(w, r, id)
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.svc.Get(id)
	if err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) deleteSession(w http.ResponseWriter, id string) {
	if err := h.svc.Delete(id); err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// putMeasurement decodes the body as the session lab's measurement type.
func (h *Handler) putMeasurement(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cur, err := h.svc.Get(id)
	if err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}

	var s store.Session
	switch cur.Lab {
	case types.LabAir:
		var m types.AirMeasurement
		if !decodeBody(w, r, &m) {
			return
		}
		s, err = h.svc.SetAir(id, m, metrics.TransportREST)
	default:
		var m types.Measurement
		if !decodeBody(w, r, &m) {
			return
		}
		s, err = h.svc.SetWater(id, m, metrics.TransportREST)
	}
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) setMonitor(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req monitorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Active == nil {
		jsonErr(w, http.StatusBadRequest, `"active" is required`)
		return
	}
	s, err := h.svc.SetMonitoring(id, *req.Active)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.svc.Reset(id)
	if err != nil {
		jsonErr(w, statusFor(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.svc.Get(id)
	if err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}
	resp := HistoryResponse{SessionID: s.ID, Lab: s.Lab}
	if s.Lab == types.LabAir {
		resp.Air = s.AirHistory
	} else {
		resp.Water = s.History
	}
	jsonResp(w, http.StatusOK, resp)
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.svc.Get(id)
	if err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}
	if s.Lab != types.LabWater {
		jsonErr(w, http.StatusConflict, "chart is only available for water sessions")
		return
	}
	jsonResp(w, http.StatusOK, ChartResponse{SessionID: s.ID, Points: history.Chart(s.History)})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s, err := h.svc.Get(id)
	if err != nil {
		jsonErr(w, statusFor(err), "session not found")
		return
	}
	jsonResp(w, http.StatusOK, buildReport(s))
}

// listAlerts returns GET /api/v1/alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// snapshot returns GET /api/v1/snapshot, every live session.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := BuildSnapshot(h.svc)
	snap.AlertCount = h.firing()
	jsonResp(w, http.StatusOK, snap)
}

func (h *Handler) firing() int {
	if h.alerts == nil {
		return 0
	}
	return h.alerts.FiringCount()
}

// --- helpers ----------------------------------------------------------------

// BuildSnapshot converts every live session into its JSON form.
func BuildSnapshot(svc *lab.Service) SnapshotResponse {
	list := svc.List()
	out := make([]SessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSessionResponse(s))
	}
	return SnapshotResponse{
		Sessions:    out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func toSessionResponse(s store.Session) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		Lab:         s.Lab,
		Monitoring:  s.Monitoring,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		LastUpdated: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	switch s.Lab {
	case types.LabAir:
		air, res := s.Air, s.AirResult
		resp.Air, resp.AirResult = &air, &res
		resp.HistoryLen = len(s.AirHistory)
	default:
		water, res := s.Water, s.WaterResult
		resp.Water, resp.Result = &water, &res
		resp.HistoryLen = len(s.History)
	}
	return resp
}

// decodeBody reads a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrExists), errors.Is(err, lab.ErrWrongLab):
		return http.StatusConflict
	case errors.Is(err, lab.ErrInvalidLab),
		errors.Is(err, lab.ErrInvalidMeasurement),
		errors.Is(err, lab.ErrMissingPayload),
		errors.Is(err, lab.ErrMissingSession):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// levelForTier maps a parameter tier onto a report hint level.
func levelForTier(t quality.Tier) string {
	switch t {
	case quality.TierOptimal:
		return "ok"
	case quality.TierAcceptable:
		return "info"
	case quality.TierMarginal:
		return "warning"
	default:
		return "critical"
	}
}
