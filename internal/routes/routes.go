package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/goaltracker/internal/app"
	"github.com/templui/goaltracker/internal/handler"
	"github.com/templui/goaltracker/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	goal := handler.NewGoalHandler(app.Stores)
	cover := handler.NewCoverHandler(goal, app.CoverService)
	auth := handler.NewAuthHandler(app.Stores)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	coverLimit := middleware.RateLimit(app.CoverRateLimiter)

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/export", middleware.RequireAuth(goal.Export))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("GET /api/goals/{id}/progress", middleware.RequireAuth(goal.Progress))
	mux.HandleFunc("POST /api/goals/{id}/cover", middleware.RequireAuth(coverLimit(cover.Upload)))

	// Milestones
	mux.HandleFunc("POST /api/goals/{id}/milestones", middleware.RequireAuth(goal.AddMilestone))
	mux.HandleFunc("PATCH /api/goals/{id}/milestones/{mid}", middleware.RequireAuth(goal.UpdateMilestone))
	mux.HandleFunc("DELETE /api/goals/{id}/milestones/{mid}", middleware.RequireAuth(goal.DeleteMilestone))
	mux.HandleFunc("POST /api/goals/{id}/milestones/{mid}/toggle", middleware.RequireAuth(goal.ToggleMilestone))

	// Dashboard
	mux.HandleFunc("GET /api/stats", middleware.RequireAuth(goal.Stats))

	// Session
	mux.HandleFunc("POST /api/logout", middleware.RequireAuth(auth.Logout))

	// Apply global middleware. Logging runs after auth so it sees the user
	// and the route pattern the mux records on the same request.
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AuthMiddleware(app.AuthService),
		middleware.RequestLogging,
	)
}
