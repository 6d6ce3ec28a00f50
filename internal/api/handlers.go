package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/undeadops/golinks/internal/store"
)

const (
	msgNotFound      = "Not Found"
	msgLinkNotFound  = "Short link not found"
	msgInvalidJSON   = "Invalid JSON body"
	msgMissingFields = "Missing required fields: 'slug' and 'url' are required"
	msgInternal      = "Internal server error"
	msgCreated       = "Short link created successfully"

	// maxBodySize caps create request bodies at 1MB
	maxBodySize = 1 << 20
)

// reservedSlugs can never be resolved, whatever is stored under them.
var reservedSlugs = map[string]struct{}{
	"create": {},
	"stats":  {},
	"list":   {},
}

var errInvalidTarget = errors.New("stored redirect url is not an absolute url")

type LinkResponse struct {
	Slug        string `json:"slug"`
	RedirectURL string `json:"redirectUrl"`
	Hits        uint64 `json:"hits"`
}

func (l *LinkResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newLinkResponse(slug string, link store.ShortLink) *LinkResponse {
	return &LinkResponse{Slug: slug, RedirectURL: link.RedirectURL, Hits: link.Hits}
}

type CreateLinkRequest struct {
	Slug string
	URL  string
}

// newCreateLinkRequest reads slug and url out of any decoded JSON value.
// Missing fields, non-string fields and non-object bodies all yield "".
func newCreateLinkRequest(body any) CreateLinkRequest {
	obj, _ := body.(map[string]any)
	slug, _ := obj["slug"].(string)
	target, _ := obj["url"].(string)
	return CreateLinkRequest{Slug: slug, URL: target}
}

type CreateLinkResponse struct {
	Message  string `json:"message"`
	ShortURL string `json:"short_url"`
}

func (c *CreateLinkResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// RootRedirect sends the bare host to its apex domain.
func (h *LinkHandler) RootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "https://"+apexDomain(r.Host)+"/", http.StatusFound)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.links.ListByHostPrefix(r.Context(), r.Host)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	list := make([]render.Renderer, 0, len(entries))
	for _, e := range entries {
		list = append(list, newLinkResponse(e.Slug, e.Link))
	}

	render.Status(r, http.StatusOK)
	if err := render.RenderList(w, r, list); err != nil {
		h.handleError(w, r, err)
	}
}

func (h *LinkHandler) Stats(w http.ResponseWriter, r *http.Request) {
	slug := pathSlug(r, "/stats/")

	link, err := h.links.Get(r.Context(), r.Host, slug)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, msgLinkNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, newLinkResponse(slug, link))
}

// Create stores the link, replacing any link already at that slug.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var body any
	if err := decodeJSONBody(r.Body, &body); err != nil {
		http.Error(w, msgInvalidJSON, http.StatusBadRequest)
		return
	}

	data := newCreateLinkRequest(body)
	if data.Slug == "" || data.URL == "" {
		http.Error(w, msgMissingFields, http.StatusBadRequest)
		return
	}

	err := h.links.Put(r.Context(), r.Host, data.Slug, store.ShortLink{RedirectURL: data.URL})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, &CreateLinkResponse{
		Message:  msgCreated,
		ShortURL: "https://" + r.Host + "/" + data.Slug,
	})
}

// Redirect resolves the slug, counts the hit and redirects to the target.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := pathSlug(r, "/")
	if _, reserved := reservedSlugs[slug]; reserved {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	link, err := h.links.Resolve(r.Context(), r.Host, slug, checkRedirectTarget)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, msgLinkNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, link.RedirectURL, http.StatusFound)
}

// pathSlug returns the decoded path after prefix. chi matches on the raw
// path when it carries escapes like %2F, so the wildcard param is not
// decoded consistently and r.URL.Path is used instead.
func pathSlug(r *http.Request, prefix string) string {
	return strings.TrimPrefix(r.URL.Path, prefix)
}

// requestSlug is the slug addressed by a stats or resolve request, "" otherwise.
func requestSlug(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	switch rctx.RoutePattern() {
	case "/stats/*":
		return pathSlug(r, "/stats/")
	case "/*":
		return pathSlug(r, "/")
	}
	return ""
}

// decodeJSONBody decodes exactly one JSON value; anything after it is an error.
func decodeJSONBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body contains data after the JSON value")
	}
	return nil
}

func checkRedirectTarget(link store.ShortLink) error {
	u, err := url.Parse(link.RedirectURL)
	if err != nil || !u.IsAbs() {
		return errInvalidTarget
	}
	return nil
}

// Helper methods for consistent error handling and responses
func (h *LinkHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("host", r.Host).
		Str("path", r.URL.Path).
		Str("slug", requestSlug(r)).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("Handling error")
	http.Error(w, msgInternal, http.StatusInternalServerError)
}

func (h *LinkHandler) respond(w http.ResponseWriter, r *http.Request, status int, v render.Renderer) {
	render.Status(r, status)
	if err := render.Render(w, r, v); err != nil {
		h.handleError(w, r, err)
	}
}
