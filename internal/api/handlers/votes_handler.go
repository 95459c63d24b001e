package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/backloghub/engine/internal/api/middleware"
	"github.com/backloghub/engine/internal/api/types"
	"github.com/backloghub/engine/internal/api/validators"
	"github.com/backloghub/engine/internal/services"
)

type VotesHandler struct {
	svc services.ProjectService
}

func NewVotesHandler(svc services.ProjectService) *VotesHandler {
	return &VotesHandler{svc: svc}
}

func (h *VotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	err = h.svc.RecordVote(r.Context(), middleware.GetUserUUID(r.Context()), &services.VoteInput{
		ProjectID: projectID,
		VoteType:  req.VoteType,
		VoteMode:  req.VoteMode,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    map[string]string{"message": "Vote Submitted Successfully"},
	})
}

// VoterList returns a project's voters. Anonymous votes appear with an empty
// voter name.
func (h *VotesHandler) VoterList(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	voters, err := h.svc.VoterList(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    voters,
		Meta:    &types.Meta{Total: int64(len(voters))},
	})
}
