package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/gamehub-auth/internal/metrics"
	"github.com/pribylovaa/gamehub-auth/internal/transport/http/handlers"
	"github.com/pribylovaa/gamehub-auth/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	Metrics  *metrics.Metrics
	// Gatherer отдаётся на /metrics; nil — prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Ready — readiness для /healthz; nil — всегда готов.
	Ready func() bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
// Служебные /livez, /healthz и /metrics всегда висят на корне.
func NewRouter(auth handlers.AuthService, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		chimw.RealIP,                    // X-Forwarded-For/X-Real-IP -> RemoteAddr
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	registerOps(root, opts)

	h := handlers.New(auth)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-code", h.SendCode)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/guest-login", h.GuestLogin)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/logout", h.Logout)
		r.Get("/validate", h.ValidateToken)
		r.Get("/profile", h.Profile)
		r.Put("/change-password", h.ChangePassword)
	})
}

func registerOps(r chi.Router, opts Options) {
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if opts.Ready == nil || opts.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
