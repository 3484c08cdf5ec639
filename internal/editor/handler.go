package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/media"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/render"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/util"
)

const previewPlaceholder = "Start typing in the editor to see a preview here."

// Room for multipart framing on top of the media itself.
const multipartOverhead = 1 << 20

// PostReader looks up the post an edit starts from.
type PostReader interface {
	Get(id model.PostID) (model.Post, bool)
}

// Handler exposes a Session over HTTP.
type Handler struct {
	session *Session
	posts   PostReader
}

func NewHandler(session *Session, posts PostReader) *Handler {
	return &Handler{
		session: session,
		posts:   posts,
	}
}

var formFields = []struct {
	name  string
	field Field
}{
	{config.FormTitle, FieldTitle},
	{config.FormContent, FieldContent},
	{config.FormImage, FieldImage},
}

// StatusOf maps session, media and store errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrNoActiveDraft), errors.Is(err, ErrStaleDraft):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrDecodeFailed):
		return http.StatusUnsupportedMediaType
	default:
		return repository.StatusOf(err)
	}
}

func (h *Handler) writeView(w http.ResponseWriter, status int) {
	util.WriteJSON(w, status, h.session.Snapshot())
}

func (h *Handler) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, http.StatusOK)
}

func (h *Handler) ServeCompose(w http.ResponseWriter, r *http.Request) {
	h.session.StartCompose()
	h.writeView(w, http.StatusOK)
}

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParsePostID(r.PathValue("id"))
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, errors.New(config.HTTPErrInvalidPostID))
		return
	}

	post, ok := h.posts.Get(id)
	if !ok {
		util.WriteError(w, http.StatusNotFound, fmt.Errorf("%w: %d", repository.ErrNotFound, id))
		return
	}

	h.session.StartEdit(post)
	h.writeView(w, http.StatusOK)
}

// ServeDraft applies the title, content and image form fields that are present.
func (h *Handler) ServeDraft(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		util.WriteError(w, http.StatusBadRequest, err)
		return
	}

	for _, f := range formFields {
		values, ok := r.PostForm[f.name]
		if !ok {
			continue
		}
		if err := h.session.SetField(f.field, values[0]); err != nil {
			util.WriteError(w, StatusOf(err), err)
			return
		}
	}

	h.writeView(w, http.StatusOK)
}

// ServeMedia starts decoding the uploaded file into the draft image and answers
// 202 with the draft token. With ?wait=1 it answers once the image is applied.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	limit := h.session.decoder.Limit()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile(config.FormMedia)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.WriteError(w, http.StatusRequestEntityTooLarge, media.ErrTooLarge)
			return
		}
		util.WriteError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if int64(len(data)) > limit {
		util.WriteError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: %w", media.ErrDecodeFailed, media.ErrTooLarge))
		return
	}

	// The decode outlives the request unless the caller waits for it.
	ctx := context.WithoutCancel(r.Context())
	token, done, err := h.session.SelectMedia(ctx, bytes.NewReader(data), header.Header.Get(config.HCType))
	if err != nil {
		util.WriteError(w, StatusOf(err), err)
		return
	}

	if r.URL.Query().Get("wait") == "" {
		util.WriteJSON(w, http.StatusAccepted, map[string]Token{"token": token})
		return
	}

	select {
	case err := <-done:
		if err != nil {
			util.WriteError(w, StatusOf(err), err)
			return
		}
		h.writeView(w, http.StatusOK)
	case <-r.Context().Done():
	}
}

func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	post, from, err := h.session.Submit(r.Context())
	switch {
	case errors.Is(err, repository.ErrPersistenceUnavailable):
		util.WriteJSON(w, http.StatusServiceUnavailable, util.ErrorBody{Error: err.Error(), Post: post})
	case err != nil:
		util.WriteError(w, StatusOf(err), err)
	case from == StateComposing:
		util.WriteJSON(w, http.StatusCreated, post)
	default:
		util.WriteJSON(w, http.StatusOK, post)
	}
}

func (h *Handler) ServeCancel(w http.ResponseWriter, r *http.Request) {
	h.session.Cancel()
	h.writeView(w, http.StatusOK)
}

// ServePreview renders the posted content, or the live draft's content when
// none is posted. ?view=source highlights the markdown source instead.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		util.WriteError(w, http.StatusBadRequest, err)
		return
	}

	content := r.PostFormValue(config.FormContent)
	if content == "" {
		content = h.session.Snapshot().Draft.Content
	}
	if content == "" {
		content = previewPlaceholder
	}

	syntaxTheme := theme.Resolve(r.FormValue("theme"))

	if r.URL.Query().Get("view") == "source" {
		html, err := render.HighlightSource(content, syntaxTheme)
		if err != nil {
			util.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		util.WriteHTML(w, []byte(html))
		return
	}

	// Drafts change on every keystroke, so their previews are never cached.
	util.WriteHTML(w, render.RenderMarkdown([]byte(content), syntaxTheme))
}
