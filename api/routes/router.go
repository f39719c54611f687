package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siamcode/standupstrip-backend/api/controllers"
	"github.com/siamcode/standupstrip-backend/api/middleware"
	"github.com/siamcode/standupstrip-backend/internal/auth"
	"github.com/siamcode/standupstrip-backend/internal/reminders"
	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	"github.com/siamcode/standupstrip-backend/internal/teams"
	"github.com/siamcode/standupstrip-backend/internal/weekly"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
)

// RouterParams bundles everything the HTTP surface needs. RateLimiter and
// Metrics may be nil; the matching features degrade to no-ops.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Database    controllers.Pinger
	Cache       controllers.Pinger
	RateLimiter middleware.RateLimiterStore
	Metrics     prometheus.Gatherer

	Auth      auth.Service
	Teams     teams.Service
	Standups  standups.Service
	Summaries summaries.Service
	Weekly    weekly.Service
	Reminders reminders.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Database, p.Cache))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimiter, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Get("/verify-email", controllers.AuthVerifyEmail(p.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/resend-verification", controllers.AuthResendVerification(p.Auth, logg))
			r.Get("/me", controllers.AuthMe(p.Auth, logg))
			r.Patch("/me", controllers.AuthUpdateProfile(p.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", controllers.TeamCreate(p.Teams, logg))
			r.Get("/", controllers.TeamListMine(p.Teams, logg))
			r.Get("/preview", controllers.TeamPreviewByCode(p.Teams, logg))
			r.Post("/join", controllers.TeamJoinByCode(p.Teams, logg))
			r.Get("/invitations", controllers.TeamListMyInvitations(p.Teams, logg))

			r.Route("/{teamId}", func(r chi.Router) {
				r.Get("/", controllers.TeamGet(p.Teams, logg))
				r.Patch("/", controllers.TeamUpdate(p.Teams, logg))
				r.Delete("/", controllers.TeamDelete(p.Teams, logg))

				r.Get("/members", controllers.TeamListMembers(p.Teams, logg))
				r.Delete("/members/{userId}", controllers.TeamRemoveMember(p.Teams, logg))

				r.Post("/invitations", controllers.TeamInvite(p.Teams, logg))
				r.Get("/invitations", controllers.TeamListPendingInvitations(p.Teams, logg))
				r.Post("/invitations/accept", controllers.TeamAcceptInvitation(p.Teams, logg))
				r.Post("/invitations/reject", controllers.TeamRejectInvitation(p.Teams, logg))

				r.Route("/standups", func(r chi.Router) {
					r.Post("/", controllers.StandupSubmit(p.Standups, logg))
					r.Get("/", controllers.StandupListByDate(p.Standups, logg))
					r.Get("/range", controllers.StandupListByRange(p.Standups, logg))
					r.Get("/heatmap", controllers.StandupHeatmap(p.Standups, logg))
				})

				r.Route("/summaries", func(r chi.Router) {
					r.Post("/generate", controllers.SummaryGenerate(p.Summaries, logg))
					r.Get("/", controllers.SummaryGetByDate(p.Summaries, logg))
					r.Get("/range", controllers.SummaryListByRange(p.Summaries, logg))
				})

				r.Route("/weekly-summaries", func(r chi.Router) {
					r.Post("/generate", controllers.WeeklyGenerate(p.Weekly, logg))
					r.Get("/", controllers.WeeklyList(p.Weekly, logg))
					r.Get("/latest", controllers.WeeklyLatest(p.Weekly, logg))
				})

				r.Route("/reminders", func(r chi.Router) {
					r.Post("/all", controllers.ReminderSendAll(p.Reminders, logg))
					r.Post("/{userId}", controllers.ReminderSend(p.Reminders, logg))
				})
			})
		})

		r.Route("/standups/{standupId}", func(r chi.Router) {
			r.Put("/", controllers.StandupUpdate(p.Standups, logg))
			r.Delete("/", controllers.StandupDelete(p.Standups, logg))
		})
	})

	return r
}
