package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvanstaden/huisvind-backend/api/controllers"
	"github.com/rvanstaden/huisvind-backend/api/middleware"
	"github.com/rvanstaden/huisvind-backend/internal/access"
	authsvc "github.com/rvanstaden/huisvind-backend/internal/auth"
	mediasvc "github.com/rvanstaden/huisvind-backend/internal/media"
	profilesvc "github.com/rvanstaden/huisvind-backend/internal/profiles"
	propertysvc "github.com/rvanstaden/huisvind-backend/internal/properties"
	"github.com/rvanstaden/huisvind-backend/pkg/auth/session"
	"github.com/rvanstaden/huisvind-backend/pkg/config"
	"github.com/rvanstaden/huisvind-backend/pkg/db"
	"github.com/rvanstaden/huisvind-backend/pkg/enums"
	"github.com/rvanstaden/huisvind-backend/pkg/logger"
	"github.com/rvanstaden/huisvind-backend/pkg/metrics"
	"github.com/rvanstaden/huisvind-backend/pkg/redis"
	"github.com/rvanstaden/huisvind-backend/pkg/storage/gcs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	GCS             gcs.Pinger
	Sessions        session.AccessSessionChecker
	AuthService     authsvc.Service
	ProfileService  profilesvc.Service
	PropertyService propertysvc.Service
	MediaService    mediasvc.Service
	Metrics         *metrics.ListingMetrics
	PromRegistry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.CORS),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
			"gcs":   deps.GCS,
		}))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public/properties", func(r chi.Router) {
		r.Get("/", controllers.PublicListProperties(deps.PropertyService, logg))
		r.Get("/featured", controllers.PublicFeaturedProperties(deps.PropertyService, logg))
		r.Get("/search", controllers.PublicSearchProperties(deps.PropertyService, logg))
		r.Get("/{id}", controllers.PublicGetProperty(deps.PropertyService, logg))
		r.Post("/{id}/views", controllers.PublicRecordView(deps.PropertyService, logg))
		r.Post("/{id}/inquiries", controllers.PublicRecordInquiry(deps.PropertyService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(deps.ProfileService, logg))
			r.Patch("/", controllers.UpdateProfile(deps.ProfileService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.LoadActor(deps.ProfileService, logg))

			r.With(middleware.RequireCapability(access.Requirement{Dashboard: true}, logg)).
				Get("/v1/dashboard/summary", controllers.DashboardSummary(logg))

			r.Route("/v1/properties", func(r chi.Router) {
				r.Use(middleware.RequireCapability(access.Requirement{Listing: true}, logg))
				r.Post("/", controllers.VendorCreateProperty(deps.PropertyService, logg))
				r.Patch("/{id}", controllers.VendorUpdateProperty(deps.PropertyService, logg))
				r.Delete("/{id}", controllers.VendorDeleteProperty(deps.PropertyService, logg))
				r.Post("/{id}/images", controllers.VendorUploadPropertyImage(deps.MediaService, logg))
				r.Post("/{id}/images/presign", controllers.VendorPresignPropertyImage(deps.MediaService, logg))
				r.Post("/{id}/images/remove", controllers.VendorRemovePropertyImage(deps.MediaService, logg))
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.ProfileService, logg))
			r.Patch("/{uid}/role", controllers.AdminUpdateUserRole(deps.ProfileService, logg))
			r.Post("/{uid}/deactivate", controllers.AdminDeactivateUser(deps.ProfileService, logg))
		})
	})

	return r
}
