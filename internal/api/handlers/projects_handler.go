package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/backloghub/engine/internal/api/middleware"
	"github.com/backloghub/engine/internal/api/types"
	"github.com/backloghub/engine/internal/api/validators"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/repository"
	"github.com/backloghub/engine/internal/services"
)

type ProjectsHandler struct {
	svc      services.ProjectService
	maxBytes int64
}

// NewProjectsHandler wires the project lifecycle endpoints. maxBytes caps the
// multipart request body on submission.
func NewProjectsHandler(svc services.ProjectService, maxBytes int64) *ProjectsHandler {
	return &ProjectsHandler{svc: svc, maxBytes: maxBytes}
}

// Submit accepts a multipart form: backlog_id, title, description, git_url,
// and one or more files under "files".
func (h *ProjectsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := types.ProjectSubmitRequest{
		BacklogID:   r.FormValue("backlog_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		GitURL:      r.FormValue("git_url"),
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	backlogID, err := uuid.Parse(req.BacklogID)
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid backlog_id")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeErrorStr(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	result, err := h.svc.Submit(r.Context(), middleware.GetUserUUID(r.Context()), &services.SubmitInput{
		BacklogID:   backlogID,
		Title:       req.Title,
		Description: req.Description,
		GitURL:      req.GitURL,
		Files:       files,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: result})
}

// List returns projects visible to the caller. Query parameters: mine,
// backlog_id, status, search, from, to (dates as 2006-01-02).
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProjectListFilter{
		Mine:   q.Get("mine") == "true",
		Search: q.Get("search"),
	}
	if raw := q.Get("backlog_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid backlog_id")
			return
		}
		filter.BacklogID = id
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseProjectStatus(raw)
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = &status
	}
	if from, to := q.Get("from"), q.Get("to"); from != "" && to != "" {
		fromT, errF := time.Parse("2006-01-02", from)
		toT, errT := time.Parse("2006-01-02", to)
		if errF != nil || errT != nil {
			writeErrorStr(w, http.StatusBadRequest, "invalid date range")
			return
		}
		toT = toT.Add(24*time.Hour - time.Nanosecond)
		filter.From, filter.To = &fromT, &toT
	}

	items, err := h.svc.List(r.Context(), middleware.GetUserUUID(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *ProjectsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), middleware.GetUserUUID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stats})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	row, err := h.svc.View(r.Context(), middleware.GetUserUUID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: row})
}

func (h *ProjectsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	result, err := h.svc.Reject(r.Context(), middleware.GetUserUUID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: result})
}

func (h *ProjectsHandler) Files(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return
	}
	result, err := h.svc.ProjectFiles(r.Context(), middleware.GetUserUUID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: result})
}

// AvailableBacklogs lists open backlogs the caller may still submit against.
func (h *ProjectsHandler) AvailableBacklogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.AvailableBacklogs(r.Context(), middleware.GetUserUUID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}
