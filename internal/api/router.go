package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"github.com/undeadops/golinks/internal/store"
)

// LinkStore is what the handlers need from the link registry.
type LinkStore interface {
	Get(ctx context.Context, host, slug string) (store.ShortLink, error)
	Put(ctx context.Context, host, slug string, link store.ShortLink) error
	ListByHostPrefix(ctx context.Context, host string) ([]store.Entry, error)
	Resolve(ctx context.Context, host, slug string, check func(store.ShortLink) error) (store.ShortLink, error)
}

type LinkHandler struct {
	links  LinkStore
	logger zerolog.Logger
}

// Router wires the five link operations. Anything it does not recognise,
// including a known path with the wrong method, is a plain 404.
func Router(links LinkStore, logger zerolog.Logger) *chi.Mux {
	h := &LinkHandler{
		links:  links,
		logger: logger,
	}

	r := chi.NewRouter()

	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.RootRedirect)
	r.Get("/list", h.List)
	r.Get("/stats/*", h.Stats)
	r.Post("/create", h.Create)
	r.Get("/*", h.Redirect)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, msgNotFound, http.StatusNotFound)
}
