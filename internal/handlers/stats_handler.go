package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellblog/backend/internal/models"
	"go.uber.org/zap"
)

// StatsService collects site-wide content counters.
type StatsService interface {
	// Method Dashboard collects user, post, comment and category counters.
	Dashboard(ctx context.Context) (*models.Stats, error)
}

// StatsHandler handles the public statistics endpoint
type StatsHandler struct {
	BaseHandler
	statsService StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		statsService: statsService,
	}
}

// RegisterRoutes registers stats handler routes
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.GetStats)
}

// GetStats handles GET /stats
// @Summary Site statistics
// @Description Retrieve site-wide user, post, comment and category counters.
// @Tags stats
// @Produce json
// @Success 200 {object} models.Stats "Site statistics"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /stats [get]
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		h.Logger.Error("failed to collect stats", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to collect stats")
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}
