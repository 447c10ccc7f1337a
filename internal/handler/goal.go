package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/goaltracker/internal/ctxkeys"
	"github.com/templui/goaltracker/internal/model"
	"github.com/templui/goaltracker/internal/progress"
	"github.com/templui/goaltracker/internal/service"
)

type GoalHandler struct {
	registry *service.StoreRegistry
	now      func() time.Time
}

func NewGoalHandler(registry *service.StoreRegistry) *GoalHandler {
	return &GoalHandler{
		registry: registry,
		now:      time.Now,
	}
}

// store opens the signed-in user's goal store.
func (h *GoalHandler) store(r *http.Request) (*service.GoalStore, error) {
	return h.registry.Open(r.Context(), ctxkeys.UserID(r.Context()))
}

func (h *GoalHandler) respond(g *model.Goal) goalResponse {
	resp := goalResponse{
		Goal:  g,
		Color: g.Color(),
		Icon:  g.Category.Icon(),
	}
	if days, ok := progress.DaysRemaining(g, h.now()); ok {
		resp.DaysRemaining = &days
	}
	return resp
}

type listResponse struct {
	Goals     []goalResponse `json:"goals"`
	State     string         `json:"state"`
	LoadError string         `json:"loadError,omitempty"`
}

// List returns the user's goals, optionally filtered and sorted.
// ?refresh=1 re-fetches from the backend first.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	if q.Get("refresh") == "1" {
		store.Refresh(r.Context())
	}

	category := model.Category(q.Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, r, model.NewValidationError("category", "is not a known category"))
		return
	}

	sortBy := q.Get("sort")
	if sortBy != "" && sortBy != progress.SortByTarget && sortBy != progress.SortByProgress {
		writeError(w, r, model.NewValidationError("sort", "must be target or progress"))
		return
	}

	goals := progress.Filter(store.Goals(), q.Get("q"), category)
	progress.Sort(goals, sortBy)

	resp := listResponse{
		Goals: make([]goalResponse, 0, len(goals)),
		State: string(store.State()),
	}
	for _, g := range goals {
		resp.Goals = append(resp.Goals, h.respond(g))
	}
	if loadErr := store.Err(); loadErr != nil {
		resp.LoadError = loadErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := store.Goal(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(goal))
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := req.toModel()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := store.AddGoal(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/goals/"+created.ID)
	writeJSON(w, http.StatusCreated, h.respond(created))
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalPatchRequest
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

	updated, err := store.UpdateGoal(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(updated))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = store.DeleteGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type progressResponse struct {
	GoalID              string `json:"goalId"`
	Progress            int    `json:"progress"`
	CompletedMilestones int    `json:"completedMilestones"`
	TotalMilestones     int    `json:"totalMilestones"`
	DaysRemaining       *int   `json:"daysRemaining,omitempty"`
}

// Progress recomputes the goal's progress from its milestones.
func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := store.Goal(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := progressResponse{
		GoalID:              goal.ID,
		Progress:            store.GoalProgress(goal.ID),
		CompletedMilestones: goal.CompletedMilestones(),
		TotalMilestones:     len(goal.Milestones),
	}
	if days, ok := progress.DaysRemaining(goal, h.now()); ok {
		resp.DaysRemaining = &days
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GoalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.Summarize(h.now()))
}

func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=goals-export.json")

	err = json.NewEncoder(w).Encode(store.Goals())
	if err != nil {
		slog.Error("failed to encode goals", "error", err, "user_id", store.UserID())
	}
}
