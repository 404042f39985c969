package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"winsales/internal/access"
	"winsales/internal/metrics"
	"winsales/internal/middleware"
)

// Version is reported by /healthz.
var Version = "dev"

// NewRouter mounts every page, action and API route behind the role gate.
func NewRouter(d Deps) http.Handler {
	authH := NewAuthHandler(d)
	advisor := NewAdvisorHandler(d)
	profile := NewProfileHandler(d)
	supervisor := NewSupervisorHandler(d)
	backoffice := NewBackofficeHandler(d)
	admin := NewAdminHandler(d)
	api := NewAPIHandler(d)
	health := NewHealthHandler(d.Health, Version)
	gate := d.Gate

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Get("/logout", authH.Logout)
	r.Post("/logout", authH.Logout)
	r.Get("/", authH.Home)

	r.Route("/dashboard", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRole(access.RoleAdvisor, access.RoleAdmin))
			r.Get("/", advisor.Dashboard)
			r.Get("/leads", advisor.ListLeads)
			r.Get("/leads/new", advisor.NewLead)
			r.Post("/leads/new", advisor.CreateLead)
			r.Get("/leads/{id}/edit", advisor.EditLead)
			r.Post("/leads/{id}/edit", advisor.UpdateLead)
			r.Post("/leads/{id}/delete", advisor.DeleteLead)
			r.Get("/agenda", advisor.ShowAgenda)
			r.Get("/sales", advisor.ListSales)
			r.Get("/sales/new", advisor.NewSale)
			r.Post("/sales/new", advisor.CreateSale)
			r.Get("/sales/{id}", advisor.SaleDetail)
			r.Post("/sales/{id}", advisor.UpdateSale)
		})

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuth)
			r.Get("/profile", profile.Show)
			r.Post("/profile", profile.Update)
			r.Post("/profile/password", profile.ChangePassword)
		})

		r.Route("/supervisor", func(r chi.Router) {
			r.Use(gate.RequireRole(access.RoleSupervisor))
			r.Get("/", supervisor.Dashboard)
			r.Get("/team", supervisor.ShowTeam)
			r.Post("/team/assign", supervisor.Assign)
			r.Post("/team/remove", supervisor.Remove)
			r.Get("/leads", supervisor.ListLeads)
			r.Get("/sales", supervisor.ListSales)
			r.Get("/agenda", supervisor.ShowAgenda)
		})

		r.Route("/backoffice", func(r chi.Router) {
			r.Use(gate.RequireRole(access.RoleBackoffice, access.RoleAdmin))
			r.Get("/", backoffice.Dashboard)
			r.Get("/leads", backoffice.ListLeads)
			r.Get("/sales", backoffice.ListSales)
			r.Get("/sales/export", backoffice.Export)
			r.Get("/sales/{id}", backoffice.ShowSale)
			r.Post("/sales/{id}", backoffice.ReviewSale)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(gate.RequireRole(access.RoleAdmin))
		r.Get("/", admin.Dashboard)
		r.Get("/leads", admin.ListLeads)
		r.Get("/leads/{id}/edit", admin.EditLead)
		r.Post("/leads/{id}/edit", admin.UpdateLead)
		r.Get("/sales", admin.ListSales)
		r.Get("/agenda", admin.ShowAgenda)

		r.Get("/users", admin.ListUsers)
		r.Post("/users", admin.CreateUser)
		r.Post("/users/{id}", admin.UpdateUser)
		r.Post("/users/{id}/role", admin.SetRole)
		r.Post("/users/{id}/ban", admin.BanUser)
		r.Post("/users/{id}/unban", admin.UnbanUser)

		r.Get("/assignments", admin.ListAssignments)
		r.Post("/assignments", admin.Assignments)

		r.Get("/settings", admin.Settings)
		r.Post("/settings/operators", admin.CreateOperator)
		r.Post("/settings/operators/{id}", admin.UpdateOperator)
		r.Post("/settings/operators/{id}/active", admin.ToggleOperator)
		r.Post("/settings/agencies", admin.CreateAgency)
		r.Post("/settings/agencies/{id}", admin.UpdateAgency)
		r.Post("/settings/agencies/{id}/active", admin.ToggleAgency)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.Config.CORSOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowCredentials: len(d.Config.CORSOrigins) > 0,
		}))
		r.Use(gate.RequireAuthJSON)
		r.Get("/me", api.Me)
		r.Get("/agenda/slot", api.Slot)
		r.Get("/locations/cities", api.Cities)
		r.Get("/locations/districts", api.Districts)
	})

	return r
}
