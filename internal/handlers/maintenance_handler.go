package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaintenanceService purges stale auth tokens.
type MaintenanceService interface {
	// Method CleanTokens deletes refresh tokens past their lifetime and used or
	// expired password reset tokens. Returns the number of deleted rows per table.
	CleanTokens(ctx context.Context) (int, int, error)
}

// MaintenanceHandler handles token cleaning requests
type MaintenanceHandler struct {
	BaseHandler
	maintenanceService MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceService MaintenanceService, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		BaseHandler:        BaseHandler{Logger: logger},
		maintenanceService: maintenanceService,
	}
}

// RegisterRoutes registers maintenance handler routes
func (h *MaintenanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens/clean", h.CleanTokens)
}

// CleanTokens handles GET /maintenance/tokens/clean
// @Summary Clean expired tokens
// @Description Removes refresh tokens older than the refresh token lifetime and used or expired password reset tokens.
// @Tags maintenance
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Token cleaning completed successfully"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /maintenance/tokens/clean [get]
func (h *MaintenanceHandler) CleanTokens(w http.ResponseWriter, r *http.Request) {
	refreshDeleted, resetDeleted, err := h.maintenanceService.CleanTokens(r.Context())
	if err != nil {
		h.Logger.Error("failed to clean tokens", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 0 deleted rows is not an error
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message":                 "token cleaning completed successfully",
		"refresh_tokens_deleted":  refreshDeleted,
		"password_resets_deleted": resetDeleted,
	})
}
