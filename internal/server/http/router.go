// Package http exposes the user and image services as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/dmitrijs2005/imagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/dmitrijs2005/imagekeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 60 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	ResendOTP(ctx context.Context, email string) (*services.RegisterResult, error)
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) error
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileInput) (*services.ProfileResult, error)
}

type ImageService interface {
	Upload(ctx context.Context, ownerID string, up *services.Upload) (*models.Image, error)
	List(ctx context.Context, ownerID string) ([]*models.Image, error)
	Get(ctx context.Context, ownerID, id string) (*models.Image, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of the router. Gatherer defaults to the
// global Prometheus registry.
type Deps struct {
	Users          UserService
	Images         ImageService
	Tokens         TokenVerifier
	DB             Pinger
	Gatherer       prometheus.Gatherer
	Logger         logging.Logger
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigins    []string
	Development    bool
}

type handler struct {
	users     UserService
	images    ImageService
	tokens    TokenVerifier
	db        Pinger
	logger    logging.Logger
	uploadDir string
	maxUpload int64
	dev       bool
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &handler{
		users:     d.Users,
		images:    d.Images,
		tokens:    d.Tokens,
		db:        d.DB,
		logger:    logger.With("module", "http"),
		uploadDir: d.UploadDir,
		maxUpload: d.MaxUploadBytes,
		dev:       d.Development,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Route not found"})
	})

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/verify-otp", h.verifyOTP)
		r.Post("/send-otp", h.sendOTP)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/me", h.me)
			r.Put("/profile", h.updateProfile)
			r.Post("/reset-password", h.resetPassword)
		})
	})

	r.Route("/api/images", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/upload", h.uploadImage)
		r.Get("/", h.listImages)
		r.Get("/{id}", h.getImage)
		r.Delete("/{id}", h.deleteImage)
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
