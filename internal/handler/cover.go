package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/service"
	"github.com/templui/goaltracker/internal/validation"
)

type CoverHandler struct {
	goals  *GoalHandler
	covers *service.CoverService
}

func NewCoverHandler(goals *GoalHandler, covers *service.CoverService) *CoverHandler {
	return &CoverHandler{
		goals:  goals,
		covers: covers,
	}
}

// Upload accepts a multipart "cover" image and sets it as the goal's imageUrl.
func (h *CoverHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.covers.Enabled() {
		writeError(w, r, service.ErrCoversDisabled)
		return
	}

	store, err := h.goals.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.CoverImageConstraints.MaxSize+(1<<20))
	err = r.ParseMultipartForm(validation.CoverImageConstraints.MaxSize)
	if err != nil {
		writeError(w, r, model.NewValidationError("cover", "must be a multipart image upload"))
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, r, model.NewValidationError("cover", "is required"))
		return
	}
	defer func() { _ = file.Close() }()

	contentType, err := validation.ValidateFile("cover", header, validation.CoverImageConstraints)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.covers.Upload(r.Context(), store, r.PathValue("id"), header.Filename, contentType, file)
	if err != nil {
		slog.Warn("cover upload failed", "error", err, "user_id", store.UserID(), "goal_id", r.PathValue("id"))
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.goals.respond(goal))
}
