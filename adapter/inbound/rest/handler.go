package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ajkula/GoArrival/config"
	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/inbound"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

const defaultListLimit = 20

// Handler serves the arrival API
type Handler struct {
	arrivalService inbound.ArrivalService
	statsService   inbound.StatsService
	logger         outbound.Logger

	// request fields left empty fall back to these
	directory string
	strategy  model.Strategy
	options   model.DetectionOptions
}

// NewHandler creates a REST handler whose defaults come from the detection config
func NewHandler(
	arrivalService inbound.ArrivalService,
	statsService inbound.StatsService,
	logger outbound.Logger,
	cfg *config.Config,
) *Handler {
	strategy, err := model.ParseStrategy(cfg.Detection.Strategy)
	if err != nil {
		strategy = model.StrategyPolling
	}

	return &Handler{
		arrivalService: arrivalService,
		statsService:   statsService,
		logger:         logger,
		directory:      cfg.Detection.Directory,
		strategy:       strategy,
		options:        cfg.DetectionOptions(),
	}
}

// SetupRoutes registers the arrival routes
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/arrivals/wait", h.waitForArrival).Methods("POST")
	router.HandleFunc("/api/arrivals/latest", h.findLatest).Methods("GET")
	router.HandleFunc("/api/arrivals", h.listArrivals).Methods("GET")
	router.HandleFunc("/api/arrivals/{id}", h.getArrival).Methods("GET")

	router.HandleFunc("/api/stats", h.getStats).Methods("GET")

	router.HandleFunc("/health", h.healthCheck).Methods("GET")
}

// WaitRequest is the body of POST /api/arrivals/wait. Every field is optional.
// Durations use Go syntax, for example "90s" or "1m30s".
type WaitRequest struct {
	Directory       string `json:"directory"`
	Strategy        string `json:"strategy"`
	Extension       string `json:"extension"`
	TransientPrefix string `json:"transientPrefix"`
	Timeout         string `json:"timeout"`
	PollInterval    string `json:"pollInterval"`
	SettleTime      string `json:"settleTime"`
}

// LatestResponse tells whether a candidate is already present
type LatestResponse struct {
	Directory string                `json:"directory"`
	Found     bool                  `json:"found"`
	Entry     *model.DirectoryEntry `json:"entry,omitempty"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// waitForArrival blocks until a stable file arrives or the attempt times out.
// Both outcomes are a 200 with the result body.
func (h *Handler) waitForArrival(w http.ResponseWriter, r *http.Request) {
	var body WaitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req, err := h.toDetectionRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.arrivalService.WaitForArrival(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) toDetectionRequest(body WaitRequest) (model.DetectionRequest, error) {
	req := model.DetectionRequest{
		Directory: h.directory,
		Strategy:  h.strategy,
		Options:   h.options,
	}

	if body.Directory != "" {
		req.Directory = body.Directory
	}
	if body.Strategy != "" {
		strategy, err := model.ParseStrategy(body.Strategy)
		if err != nil {
			return req, err
		}
		req.Strategy = strategy
	}
	if body.Extension != "" {
		req.Options.Extension = body.Extension
	}
	if body.TransientPrefix != "" {
		req.Options.TransientPrefix = body.TransientPrefix
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"timeout", body.Timeout, &req.Options.Timeout},
		{"pollInterval", body.PollInterval, &req.Options.PollInterval},
		{"settleTime", body.SettleTime, &req.Options.SettleTime},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil || parsed <= 0 {
			return req, fmt.Errorf("invalid %s: %q", d.name, d.value)
		}
		*d.dst = parsed
	}

	req.Options = req.Options.Normalize()
	return req, nil
}

func (h *Handler) findLatest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dir := query.Get("dir")
	if dir == "" {
		dir = h.directory
	}
	opts := h.options
	if ext := query.Get("extension"); ext != "" {
		opts.Extension = ext
		opts = opts.Normalize()
	}

	resolved, err := h.arrivalService.ResolveDirectory(dir)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.arrivalService.FindLatest(r.Context(), resolved, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LatestResponse{
		Directory: resolved,
		Found:     entry != nil,
		Entry:     entry,
	})
}

func (h *Handler) listArrivals(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := h.arrivalService.ListArrivals(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Arrivals []*model.DetectionResult `json:"arrivals"`
		Count    int                      `json:"count"`
	}{
		Arrivals: results,
		Count:    len(results),
	})
}

func (h *Handler) getArrival(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.arrivalService.GetArrival(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeError maps domain errors onto HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrConfiguration), errors.Is(err, model.ErrUnknownStrategy):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrSubscription):
		status = http.StatusServiceUnavailable
	case errors.Is(err, model.ErrArrivalNotFound):
		status = http.StatusNotFound
	default:
		h.logger.Error("Request failed", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
