package rest

import (
	"github.com/frahmantamala/grafana-sync/internal/auth"
	"github.com/frahmantamala/grafana-sync/internal/directory"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	"github.com/frahmantamala/grafana-sync/internal/setting"
	syncpkg "github.com/frahmantamala/grafana-sync/internal/sync"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	"github.com/frahmantamala/grafana-sync/internal/team"
	"github.com/frahmantamala/grafana-sync/internal/transport/middleware"
	"github.com/frahmantamala/grafana-sync/internal/transport/swagger"
	"github.com/frahmantamala/grafana-sync/internal/user"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Users        *user.Handler
	Organization *organization.Handler
	Team         *team.Handler
	Directory    *directory.Handler
	Sync         *syncpkg.Handler
	SyncLog      *synclog.Handler
	Setting      *setting.Handler
}

type Options struct {
	AllowedOrigins []string
	// OpenAPIPath is the document served at /openapi.yml. Empty disables the
	// document and the swagger UI.
	OpenAPIPath string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)

	if opts.OpenAPIPath != "" {
		router.Get(swagger.DocumentPath, swagger.DocumentHandler(opts.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)
			pr.Get("/stats", h.Sync.GetStats)

			pr.Route("/opoppo", func(or chi.Router) {
				or.Get("/users", h.Directory.ListEmployees)
				or.Get("/users/{id}", h.Directory.GetEmployee)
				or.Get("/companies", h.Directory.ListCompanies)
				or.Get("/org-units", h.Directory.ListOrgUnits)
				or.Get("/positions", h.Directory.ListPositions)
			})

			pr.Route("/grafana", func(gr chi.Router) {
				gr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.Users.ListUsers)
					ur.Post("/", h.Users.CreateUser)
					ur.Get("/{id}", h.Users.GetUser)
					ur.Put("/{id}", h.Users.UpdateUser)
					ur.Delete("/{id}", h.Users.DeleteUser)
					ur.Post("/{id}/provision", h.Users.ProvisionUser)
					ur.Get("/{id}/organizations", h.Organization.ListUserOrganizations)
					ur.Get("/{id}/teams", h.Team.ListUserTeams)
				})

				gr.Route("/organizations", func(or chi.Router) {
					or.Get("/", h.Organization.ListOrganizations)
					or.Post("/", h.Organization.CreateOrganization)
					or.Get("/{id}", h.Organization.GetOrganization)
					or.Put("/{id}", h.Organization.UpdateOrganization)
					or.Delete("/{id}", h.Organization.DeleteOrganization)
					or.Get("/{id}/members", h.Organization.ListMembers)
					or.Post("/{id}/members", h.Organization.AddMember)
					or.Put("/{id}/members/{userID}", h.Organization.UpdateMember)
					or.Delete("/{id}/members/{userID}", h.Organization.RemoveMember)
					or.Post("/{id}/members/{userID}/default", h.Organization.SetDefaultMember)
				})

				gr.Route("/teams", func(tr chi.Router) {
					tr.Get("/", h.Team.ListTeams)
					tr.Post("/", h.Team.CreateTeam)
					tr.Get("/{id}", h.Team.GetTeam)
					tr.Put("/{id}", h.Team.UpdateTeam)
					tr.Delete("/{id}", h.Team.DeleteTeam)
					tr.Get("/{id}/members", h.Team.ListMembers)
					tr.Post("/{id}/members", h.Team.AddMember)
					tr.Delete("/{id}/members/{userID}", h.Team.RemoveMember)
				})
			})

			pr.Route("/sync", func(sr chi.Router) {
				sr.Post("/opoppo", h.Sync.SyncDirectory)
				sr.Post("/grafana", h.Sync.SyncPlatform)
				sr.Post("/grafana/orgs", h.Sync.SyncOrganizations)
				sr.Post("/grafana/users", h.Sync.SyncUsers)
				sr.Post("/grafana/teams", h.Sync.SyncTeams)
				sr.Post("/all", h.Sync.SyncAll)
				sr.Get("/logs", h.SyncLog.ListLogs)
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Get("/grafana", h.Setting.GetGroup(setting.GroupPlatform))
				sr.Put("/grafana", h.Setting.UpdateGroup(setting.GroupPlatform))
				sr.Get("/opoppo", h.Setting.GetGroup(setting.GroupDirectory))
				sr.Put("/opoppo", h.Setting.UpdateGroup(setting.GroupDirectory))
			})
		})
	})
}
