package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gallery/internal/assets"
	"gallery/internal/config"
	"gallery/internal/history"
	"gallery/internal/imagelock"
	"gallery/internal/middleware"
	"gallery/internal/pipeline"
	"gallery/internal/repository"
	"gallery/internal/requestip"
)

// RepairQueue takes images whose thumbnail could not be written.
type RepairQueue interface {
	Enqueue(imageID int64)
}

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	DB      *sql.DB
	Repo    *repository.Repository
	Assets  *assets.Manager
	History *history.Log
	Locks   *imagelock.Locker
	Repairs RepairQueue
	Config  *config.Config
}

type Handler struct {
	db      *sql.DB
	repo    *repository.Repository
	assets  *assets.Manager
	history *history.Log
	locks   *imagelock.Locker
	repairs RepairQueue
	config  *config.Config
	limiter *middleware.RateLimiter
}

func New(d Deps) *Handler {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	locks := d.Locks
	if locks == nil {
		locks = imagelock.New()
	}

	resolver, err := requestip.NewResolver(cfg.TrustedProxyCIDRs)
	if err != nil {
		// config.Validate rejects bad CIDRs, so this only happens with a
		// hand-built config
		log.Printf("Handler: ignoring trusted proxies: %v", err)
		resolver = &requestip.Resolver{}
	}

	return &Handler{
		db:      d.DB,
		repo:    d.Repo,
		assets:  d.Assets,
		history: d.History,
		locks:   locks,
		repairs: d.Repairs,
		config:  cfg,
		limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Resolver:          resolver,
		}),
	}
}

// Close stops background work owned by the handler.
func (h *Handler) Close() {
	h.limiter.Stop()
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnknownOperation),
		errors.Is(err, pipeline.ErrInvalidGeometry),
		errors.Is(err, pipeline.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, assets.ErrImageNotFound),
		errors.Is(err, pipeline.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, assets.ErrPristineMissing),
		errors.Is(err, assets.ErrPristineExists):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrDecode),
		errors.Is(err, pipeline.ErrInvalidDimensions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged and
// their detail is not sent to the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Handler: %s %s failed: %v", r.Method, r.URL.Path, err)
		middleware.WriteError(w, status, "internal error")
		return
	}
	middleware.WriteError(w, status, err.Error())
}

func imageIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
