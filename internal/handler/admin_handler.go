package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"eventvote/internal/auth"
	"eventvote/internal/config"
	"eventvote/internal/service"
	apperrors "eventvote/pkg/errors"
	"eventvote/pkg/logger"
)

// adminTokenTTL is the lifetime of an admin session token.
const adminTokenTTL = 12 * time.Hour

type AdminHandler struct {
	adminService  *service.AdminService
	deviceService *service.DeviceService
	cfg           *config.Config
	logger        *logger.Logger
}

func NewAdminHandler(adminService *service.AdminService, deviceService *service.DeviceService, cfg *config.Config, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		deviceService: deviceService,
		cfg:           cfg,
		logger:        log,
	}
}

// Login handles POST /api/v1/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) == 1
	if h.cfg.AdminEmail == "" || !emailOK || !passOK {
		h.logger.WithField("email", req.Email).Warn("Admin login rejected")
		h.respondError(w, apperrors.NewAuthenticationError("Invalid credentials"))
		return
	}

	token, exp, err := auth.Issue(req.Email, "admin", h.cfg.JWTSecret, adminTokenTTL)
	if err != nil {
		h.respondError(w, apperrors.NewInternalError("Failed to issue token", err))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": exp,
	})
}

// GenerateCode handles POST /api/v1/admin/codes
func (h *AdminHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	vc, err := h.adminService.GenerateCode(r.Context())
	if err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusCreated, vc)
}

// ListCodes handles GET /api/v1/admin/codes
func (h *AdminHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.adminService.ListCodes(r.Context())
	if err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"codes": codes,
		"count": len(codes),
	})
}

// RegisterTeam handles POST /api/v1/admin/teams
func (h *AdminHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID   string `json:"team_id"`
		TeamName string `json:"team_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	registration, err := h.adminService.RegisterTeam(r.Context(), req.TeamID, req.TeamName)
	if err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusCreated, registration)
}

// Analytics handles GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.adminService.Analytics(r.Context())
	if err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusOK, analytics)
}

// ExportRankings handles GET /api/v1/admin/export
func (h *AdminHandler) ExportRankings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rankings.csv"`)

	if err := h.adminService.ExportRankingsCSV(r.Context(), w); err != nil {
		h.logger.WithError(err).Error("CSV export failed")
	}
}

// WipeData handles DELETE /api/v1/admin/data
func (h *AdminHandler) WipeData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passkey string `json:"passkey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	deleted, err := h.adminService.WipeAll(r.Context(), req.Passkey)
	if err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// ConnectDevice handles POST /api/v1/admin/device/connect
func (h *AdminHandler) ConnectDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	if err := h.deviceService.Connect(r.Context(), req.Address); err != nil {
		h.respondError(w, apperrors.From(err))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Device connected",
	})
}

// DeviceCode handles GET /api/v1/admin/device/code
func (h *AdminHandler) DeviceCode(w http.ResponseWriter, r *http.Request) {
	latest := h.deviceService.LatestCode()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"connected": h.deviceService.Connected(),
		"latest":    latest,
	})
}

// Helper methods

func (h *AdminHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *AdminHandler) respondError(w http.ResponseWriter, appErr *apperrors.AppError) {
	if appErr.Internal != nil {
		h.logger.WithError(appErr).Error("Admin request failed")
	}
	h.respondJSON(w, appErr.StatusCode, map[string]interface{}{
		"success": false,
		"message": appErr.Message,
		"type":    appErr.Type,
	})
}
