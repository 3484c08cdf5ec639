package repository

import (
	"errors"
	"net/http"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/util"
)

// Handler serves the post collection over HTTP.
type Handler struct {
	store *ContentStore
}

func NewHandler(store *ContentStore) *Handler {
	return &Handler{store: store}
}

func postIDFromRequest(w http.ResponseWriter, r *http.Request) (model.PostID, bool) {
	id, err := model.ParsePostID(r.PathValue("id"))
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, errors.New(config.HTTPErrInvalidPostID))
		return 0, false
	}
	return id, true
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, h.store.Posts())
}

func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	post, found := h.store.Get(id)
	if !found {
		util.WriteError(w, http.StatusNotFound, ErrNotFound)
		return
	}
	util.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	removed, err := h.store.Remove(r.Context(), id)
	switch {
	case !removed:
		util.WriteError(w, http.StatusNotFound, ErrNotFound)
	case err != nil:
		util.WriteError(w, http.StatusServiceUnavailable, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServePreview renders a post's content. The syntax theme comes from the
// "theme" query parameter.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDFromRequest(w, r)
	if !ok {
		return
	}

	post, found := h.store.Get(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	syntaxTheme := theme.Resolve(r.URL.Query().Get("theme"))
	html := render.RenderMarkdownCached([]byte(post.Content), util.ContentHashString(post.Content), syntaxTheme)
	util.WriteHTML(w, html)
}

// StatusOf maps store errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
