package handler

import (
	"net/http"
)

func (h *GoalHandler) AddMilestone(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req milestoneRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	milestone, err := req.toModel("")
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := store.AddMilestone(r.Context(), r.PathValue("id"), milestone)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *GoalHandler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req milestonePatchRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := store.UpdateMilestone(r.Context(), r.PathValue("id"), r.PathValue("mid"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ToggleMilestone flips completion and returns the goal with its new progress.
func (h *GoalHandler) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goalID := r.PathValue("id")
	_, err = store.ToggleMilestoneCompleted(r.Context(), goalID, r.PathValue("mid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := store.Goal(goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(goal))
}

func (h *GoalHandler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = store.DeleteMilestone(r.Context(), r.PathValue("id"), r.PathValue("mid"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
