package http

import (
	"log/slog"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/access"
	"github.com/Chakshu098/Everhack/internal/delivery/http/controllers"
	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/delivery/http/middleware"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/metrics"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// LoginLimiter throttles sign-up and login per client address.
	LoginLimiter *middleware.RateLimiter

	Sessions *session.Registry
	Policy   access.Policy

	Auth       domain.AuthService
	Events     domain.EventService
	Attendees  domain.AttendeeService
	Dashboards domain.DashboardService
	Workflows  controllers.Workflows
}

// NewRouter returns the API handler.
//
// Every request runs Recovery → RequestID → RealIP → logging → CORS → Session.
// Member routes sit behind the /dashboard rule and admin routes behind the
// /admin rule, so a caller without the role never reaches a handler.
func NewRouter(deps RouterDeps) http.Handler {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	policy := deps.Policy
	if policy == nil {
		policy = access.DefaultPolicy
	}

	authController := controllers.NewAuthController(deps.Logger, deps.Auth, deps.Sessions)
	eventController := controllers.NewEventController(deps.Logger, deps.Events)
	registrationController := controllers.NewRegistrationController(deps.Logger, deps.Attendees)
	dashboardController := controllers.NewDashboardController(deps.Logger, deps.Dashboards)
	workflowController := controllers.NewWorkflowController(deps.Logger, deps.Workflows, deps.Events)
	accessController := controllers.NewAccessController(policy)

	member := middleware.RequireAccess(policy, access.Dashboard, recorder)
	admin := middleware.RequireAccess(policy, access.Admin, recorder)
	throttle := func(next http.Handler) http.Handler { return next }
	if deps.LoginLimiter != nil {
		throttle = deps.LoginLimiter.Middleware()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware(deps.Logger, recorder))
	r.Use(middleware.CORS(deps.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusMethodNotAllowed, helpers.ErrCodeBadRequest, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(deps.Sessions, deps.Logger))

		// Public
		r.With(throttle).Post("/auth/signup", authController.SignUp)
		r.With(throttle).Post("/auth/login", authController.Login)
		r.Post("/auth/logout", authController.Logout)
		r.Get("/auth/session", authController.Session)
		r.Get("/access", accessController.Check)
		r.Get("/events", eventController.ListEvents)
		r.Get("/events/{id}", eventController.GetEvent)

		// Members and admins
		r.Group(func(r chi.Router) {
			r.Use(member)
			r.Post("/auth/refresh", authController.Refresh)
			r.Get("/dashboard", dashboardController.Member)
			r.Get("/me/registrations", registrationController.ListMine)
			r.Post("/events/{id}/registrations", registrationController.Register)
		})

		// Admins
		r.Route("/admin", func(r chi.Router) {
			r.Use(admin)
			r.Get("/dashboard", dashboardController.Admin)

			r.Post("/events", eventController.CreateEvent)
			r.Patch("/events/{id}", eventController.UpdateEvent)
			r.Delete("/events/{id}", eventController.DeleteEvent)

			r.Route("/workflow", func(r chi.Router) {
				r.Get("/", workflowController.Snapshot)
				r.Post("/create", workflowController.OpenCreate)
				r.Post("/edit/{id}", workflowController.OpenEdit)
				r.Put("/draft", workflowController.EditDraft)
				r.Post("/submit", workflowController.Submit)
				r.Post("/cancel", workflowController.Cancel)
				r.Post("/delete/{id}", workflowController.RequestDelete)
				r.Post("/confirm-delete", workflowController.ConfirmDelete)
				r.Post("/refresh", workflowController.Refresh)
				r.Delete("/notice", workflowController.DismissNotice)
			})
		})
	})

	return r
}
