package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api/handler"
	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/auth"
	"github.com/flockhq/flock/internal/cell"
	"github.com/flockhq/flock/internal/fellowship"
	"github.com/flockhq/flock/internal/goal"
	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/performance"
	"github.com/flockhq/flock/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	AuthService *auth.Service
	Users       auth.UserRepository
	Fellowships fellowship.Repository
	Cells       cell.Repository
	Teams       team.Repository
	Invitees    invitee.Repository
	Goals       goal.Repository
	Definitions achievement.DefinitionRepository
	UserAwards  achievement.UserAwardRepository
	TeamAwards  achievement.TeamAwardRepository
	Engine      *achievement.Engine
	Performance *performance.Service
}

// NewRouter creates and configures a Chi router with all middleware and routes.
// Everything except /health sits behind API-key authentication; mutating
// organization routes additionally require the admin or fellowship_leader
// role, and user management is admin-only.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	fellowshipHandler := handler.NewFellowshipHandler(deps.Fellowships)
	cellHandler := handler.NewCellHandler(deps.Cells)
	teamHandler := handler.NewTeamHandler(deps.Teams)
	inviteeHandler := handler.NewInviteeHandler(deps.Invitees, deps.Engine)
	goalHandler := handler.NewGoalHandler(deps.Goals)
	achievementHandler := handler.NewAchievementHandler(deps.Definitions, deps.UserAwards, deps.TeamAwards, deps.Teams, deps.Engine)
	performanceHandler := handler.NewPerformanceHandler(deps.Performance)
	userHandler := handler.NewUserHandler(deps.Users, deps.AuthService)

	leaderOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleFellowshipLeader)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Route("/fellowships", func(r chi.Router) {
			r.Get("/", fellowshipHandler.List)
			r.Get("/{id}", fellowshipHandler.GetByID)
			r.With(leaderOnly).Post("/", fellowshipHandler.Create)
			r.With(leaderOnly).Patch("/{id}", fellowshipHandler.Update)
			r.With(middleware.RequireAdmin()).Delete("/{id}", fellowshipHandler.Delete)
		})

		r.Route("/cells", func(r chi.Router) {
			r.Get("/", cellHandler.List)
			r.Get("/{id}", cellHandler.GetByID)
			r.With(leaderOnly).Post("/", cellHandler.Create)
			r.With(leaderOnly).Patch("/{id}", cellHandler.Update)
			r.With(leaderOnly).Delete("/{id}", cellHandler.Delete)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Get("/{id}", teamHandler.GetByID)
			r.Get("/{id}/members", teamHandler.ListMembers)
			r.With(leaderOnly).Post("/", teamHandler.Create)
			r.With(leaderOnly).Patch("/{id}", teamHandler.Update)
			r.With(leaderOnly).Delete("/{id}", teamHandler.Delete)
			r.With(leaderOnly).Post("/{id}/members/{userID}", teamHandler.AddMember)
			r.With(leaderOnly).Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
		})

		r.Route("/invitees", func(r chi.Router) {
			r.Post("/", inviteeHandler.Create)
			r.Get("/", inviteeHandler.List)
			r.Get("/{id}", inviteeHandler.GetByID)
			r.Patch("/{id}", inviteeHandler.Update)
			r.Patch("/{id}/status", inviteeHandler.UpdateStatus)
			r.With(leaderOnly).Delete("/{id}", inviteeHandler.Delete)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", goalHandler.List)
			r.Get("/{id}", goalHandler.GetByID)
			r.Patch("/{id}/progress", goalHandler.UpdateProgress)
			r.With(leaderOnly).Post("/", goalHandler.Create)
			r.With(leaderOnly).Patch("/{id}", goalHandler.Update)
			r.With(leaderOnly).Delete("/{id}", goalHandler.Delete)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", achievementHandler.List)
			r.Get("/users/{id}", achievementHandler.ListUserAwards)
			r.Get("/teams/{id}", achievementHandler.ListTeamAwards)
			r.Post("/evaluate", achievementHandler.Evaluate)
		})

		r.Get("/dashboard/performance", performanceHandler.Get)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.GetByID)
			r.Delete("/{id}", userHandler.Revoke)
		})
	})

	return r
}
