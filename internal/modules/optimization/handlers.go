package optimization

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles HTTP requests for the optimization module.
type Handler struct {
	service *OptimizerService
	runRepo *RunRepository
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler.
func NewHandler(service *OptimizerService, runRepo *RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		runRepo: runRepo,
		log:     log.With().Str("component", "optimizer_handler").Logger(),
	}
}

// HandleOptimizeMPT handles POST /api/optimize/mpt.
func (h *Handler) HandleOptimizeMPT(w http.ResponseWriter, r *http.Request) {
	var req MPTRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	run, err := h.service.RunMPT(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.saveRun(run)
	h.writeJSON(w, http.StatusOK, runToResponse(run))
}

// HandleOptimizeBL handles POST /api/optimize/bl.
func (h *Handler) HandleOptimizeBL(w http.ResponseWriter, r *http.Request) {
	var req BLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	run, err := h.service.RunBlackLitterman(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.saveRun(run)
	h.writeJSON(w, http.StatusOK, runToResponse(run))
}

// HandleOptimizeFrontier handles POST /api/optimize/frontier.
func (h *Handler) HandleOptimizeFrontier(w http.ResponseWriter, r *http.Request) {
	var req FrontierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	frontier, err := h.service.RunFrontier(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := FrontierResponse{
		Labels: req.Labels,
		Points: make([]FrontierPointResponse, 0, len(frontier)),
	}
	for _, p := range frontier {
		response.Points = append(response.Points, FrontierPointResponse{
			ExpectedReturn: p.ExpectedReturn,
			Volatility:     p.Risk,
			SharpeRatio:    p.SharpeRatio,
			Weights:        p.Weights,
		})
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleListRuns handles GET /api/optimize/runs.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	runs, err := h.runRepo.ListRecent(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	response := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, runToResponse(run))
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetRun handles GET /api/optimize/runs/{id}.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runRepo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("uuid", id).Msg("Failed to load run")
		h.writeError(w, http.StatusInternalServerError, "Failed to load run")
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	h.writeJSON(w, http.StatusOK, runToResponse(run))
}

// saveRun persists a run. Persistence failures are logged but do not fail
// the request, the computed portfolio is still returned.
func (h *Handler) saveRun(run *Run) {
	if h.runRepo == nil {
		return
	}
	if err := h.runRepo.Save(run); err != nil {
		h.log.Error().Err(err).Str("uuid", run.ID).Msg("Failed to save run")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
