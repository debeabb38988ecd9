package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"

	"eventvote/internal/domain"
	"eventvote/internal/service"
	apperrors "eventvote/pkg/errors"
	"eventvote/pkg/logger"
)

type VotingHandler struct {
	votingService *service.VotingService
	logger        *logger.Logger
}

func NewVotingHandler(votingService *service.VotingService, log *logger.Logger) *VotingHandler {
	return &VotingHandler{
		votingService: votingService,
		logger:        log,
	}
}

// SubmitVote handles POST /api/v1/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDenial(w, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	receipt, err := h.votingService.SubmitVote(ctx, req.Code, req.TeamID, req.TeamName)
	if err != nil {
		h.respondDenial(w, apperrors.From(err))
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": receipt.Message,
		"vote": map[string]interface{}{
			"vote_id":   receipt.VoteID,
			"team_id":   receipt.TeamID,
			"team_name": receipt.TeamName,
			"voted_at":  receipt.VotedAt,
		},
	})
}

// GetRankings handles GET /api/v1/rankings (public polling endpoint)
func (h *VotingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rankings, err := h.votingService.GetRankings(ctx)
	if err != nil {
		h.respondDenial(w, apperrors.From(err))
		return
	}

	// The tag covers the board content only; LastUpdate alone must not
	// invalidate client caches.
	etag := h.generateETag(struct {
		Teams      []domain.TeamRanking `json:"teams"`
		TotalVotes int                  `json:"total_votes"`
	}{rankings.Teams, rankings.TotalVotes})
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=10")

	h.respondJSON(w, http.StatusOK, rankings)
}

// Helper methods

func (h *VotingHandler) generateETag(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`"%x"`, md5.Sum(data))
}

func (h *VotingHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// respondDenial renders a denial or failure in the uniform envelope the
// voting frontend expects.
func (h *VotingHandler) respondDenial(w http.ResponseWriter, appErr *apperrors.AppError) {
	body := map[string]interface{}{
		"success": false,
		"message": appErr.Message,
		"type":    appErr.Type,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	h.respondJSON(w, appErr.StatusCode, body)
}
