package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseboard/internal/auth"
	"pulseboard/internal/httpserver/handlers"
	"pulseboard/internal/models"
)

func NewRouter(db *gorm.DB, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/register", handlers.Register(db, lg))
	r.Post("/v1/auth/login", handlers.Login(db, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.RequireAuth)
		protected.Get("/v1/auth/me", handlers.Me(db, lg))

		protected.Route("/v1/projects", func(pr chi.Router) {
			pr.Post("/", handlers.CreateProject(db, lg))
			pr.Get("/", handlers.ListMyProjects(db, lg))

			pr.Route("/{projectID}", func(p chi.Router) {
				// Invite targets and leavers are not necessarily active
				// members yet, so these skip the role gate.
				p.Post("/accept", handlers.AcceptInvite(db, lg))
				p.Post("/decline", handlers.DeclineInvite(db, lg))
				p.Post("/leave", handlers.LeaveProject(db, lg))

				p.With(auth.RequireProjectRole(db, models.RoleManager)).
					Patch("/", handlers.UpdateProject(db, lg))
				p.With(auth.RequireProjectRole(db, models.RoleOwner)).
					Delete("/", handlers.DeleteProject(db, lg))

				p.Group(func(mgr chi.Router) {
					mgr.Use(auth.RequireProjectRole(db, models.RoleManager))
					mgr.Post("/invite", handlers.InviteMember(db, lg))
					mgr.Post("/users", handlers.InviteMember(db, lg))
				})

				p.With(auth.RequireProjectRole(db, models.RoleViewer)).
					Get("/users", handlers.GetProjectUsers(db, lg))
				p.With(auth.RequireProjectRole(db, models.RoleViewer)).
					Get("/audit", handlers.ListAuditEvents(db, lg))

				p.Route("/incidents", func(in chi.Router) {
					viewer := auth.RequireProjectRole(db, models.RoleViewer)
					member := auth.RequireProjectRole(db, models.RoleMember)

					in.With(member).Post("/", handlers.CreateIncident(db, lg))
					in.With(viewer).Get("/", handlers.ListIncidents(db, lg))
					in.With(viewer).Get("/{incidentID}", handlers.GetIncident(db, lg))
					in.With(member).Patch("/{incidentID}", handlers.UpdateIncident(db, lg))
					in.With(member).Delete("/{incidentID}", handlers.DeleteIncident(db, lg))
					in.With(member).Post("/{incidentID}/comments", handlers.AddIncidentComment(db, lg))
					in.With(member).Patch("/{incidentID}/status", handlers.ChangeIncidentStatus(db, lg))
					in.With(viewer).Get("/{incidentID}/timeline", handlers.GetIncidentTimeline(db, lg))
				})

				p.Route("/tasks", func(tk chi.Router) {
					viewer := auth.RequireProjectRole(db, models.RoleViewer)
					member := auth.RequireProjectRole(db, models.RoleMember)

					tk.With(member).Post("/", handlers.CreateTask(db, lg))
					tk.With(viewer).Get("/", handlers.ListTasks(db, lg))
					tk.With(viewer).Get("/{taskID}", handlers.GetTask(db, lg))
					tk.With(member).Patch("/{taskID}", handlers.UpdateTask(db, lg))
					tk.With(member).Delete("/{taskID}", handlers.DeleteTask(db, lg))
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
