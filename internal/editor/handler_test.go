package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/media"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/storage"
	"github.com/debemdeboas/folio/internal/theme"
	"github.com/debemdeboas/folio/internal/util"
)

type testServer struct {
	mux     *http.ServeMux
	session *Session
	store   *repository.ContentStore
	slot    *failingSlot
}

// failingSlot fails every Put once armed.
type failingSlot struct {
	storage.Slot
	failPut bool
}

func (f *failingSlot) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Slot.Put(ctx, key, value)
}

func newTestServer(t *testing.T, decoder media.Decoder) *testServer {
	t.Helper()

	slot := &failingSlot{Slot: storage.NewMemorySlot()}
	store := repository.NewContentStore(slot, repository.Options{
		Key:              "blogPosts",
		Author:           "Sachin Oli",
		PlaceholderImage: "https://example.com/placeholder.png",
	})
	require.NoError(t, store.Init(context.Background()))

	session := NewSession(store, decoder)
	h := NewHandler(session, store)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/editor", h.ServeSnapshot)
	mux.HandleFunc("POST /api/editor/compose", h.ServeCompose)
	mux.HandleFunc("POST /api/editor/edit/{id}", h.ServeEdit)
	mux.HandleFunc("PATCH /api/editor/draft", h.ServeDraft)
	mux.HandleFunc("POST /api/editor/media", h.ServeMedia)
	mux.HandleFunc("POST /api/editor/submit", h.ServeSubmit)
	mux.HandleFunc("POST /api/editor/cancel", h.ServeCancel)
	mux.HandleFunc("POST /api/editor/preview", h.ServePreview)

	return &testServer{mux: mux, session: session, store: store, slot: slot}
}

func (s *testServer) do(method, target string, body *strings.Reader, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) patchDraft(values url.Values) *httptest.ResponseRecorder {
	return s.do(http.MethodPatch, "/api/editor/draft", strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (s *testServer) upload(t *testing.T, target, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="media"; filename="upload"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var view map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestHandlerComposeAndSubmit(t *testing.T) {
	s := newTestServer(t, media.Decoder{})

	rec := s.do(http.MethodPost, "/api/editor/compose", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "composing", decodeView(t, rec)["state"])

	rec = s.patchDraft(url.Values{"title": {"Hello"}, "content": {"World"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/editor/submit", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var post model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "https://example.com/placeholder.png", post.Image)

	assert.Equal(t, post.ID, s.store.Posts()[0].ID)
	assert.Equal(t, StateIdle, s.session.Snapshot().State)
}

func TestHandlerSubmitEmptyTitle(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")
	s.patchDraft(url.Values{"content": {"Body only"}})

	rec := s.do(http.MethodPost, "/api/editor/submit", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, StateComposing, s.session.Snapshot().State)
	assert.Len(t, s.store.Posts(), 2)
}

func TestHandlerIdleDraftConflicts(t *testing.T) {
	s := newTestServer(t, media.Decoder{})

	assert.Equal(t, http.StatusConflict, s.patchDraft(url.Values{"title": {"x"}}).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/editor/submit", nil, "").Code)
	assert.Equal(t, http.StatusConflict, s.upload(t, "/api/editor/media", "image/png", pngHeader).Code)
}

func TestHandlerEdit(t *testing.T) {
	s := newTestServer(t, media.Decoder{})

	rec := s.do(http.MethodPost, "/api/editor/edit/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/editor/edit/nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/editor/edit/2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "editing", view["state"])
	assert.EqualValues(t, 2, view["target"])

	s.patchDraft(url.Values{"title": {"Renamed"}})
	rec = s.do(http.MethodPost, "/api/editor/submit", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	post, ok := s.store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Renamed", post.Title)
}

func TestHandlerSubmitPersistFailure(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")
	s.patchDraft(url.Values{"title": {"Hello"}, "content": {"World"}})
	s.slot.failPut = true

	rec := s.do(http.MethodPost, "/api/editor/submit", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Error string     `json:"error"`
		Post  model.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Hello", body.Post.Title)
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, StateIdle, s.session.Snapshot().State)
}

func TestHandlerCancel(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")

	rec := s.do(http.MethodPost, "/api/editor/cancel", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeView(t, rec)["state"])
}

func TestHandlerMediaAccepted(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")

	rec := s.upload(t, "/api/editor/media", "image/png", pngHeader)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(s.session.Snapshot().Token), body["token"])
}

func TestHandlerMediaWait(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")

	rec := s.upload(t, "/api/editor/media?wait=1", "image/png", pngHeader)
	require.Equal(t, http.StatusOK, rec.Code)

	draft := decodeView(t, rec)["draft"].(map[string]any)
	assert.True(t, strings.HasPrefix(draft["image"].(string), "data:image/png;base64,"))
}

func TestHandlerMediaErrors(t *testing.T) {
	s := newTestServer(t, media.Decoder{MaxBytes: 8})
	s.do(http.MethodPost, "/api/editor/compose", nil, "")

	rec := s.upload(t, "/api/editor/media?wait=1", "image/png", pngHeader)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.upload(t, "/api/editor/media?wait=1", "text/plain", []byte("notes"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, s.session.Snapshot().Draft.Image)
}

func TestHandlerPreview(t *testing.T) {
	s := newTestServer(t, media.Decoder{})

	rec := s.do(http.MethodPost, "/api/editor/preview", strings.NewReader(url.Values{"content": {"# Draft"}}.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")

	rec = s.do(http.MethodPost, "/api/editor/preview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), previewPlaceholder)

	s.do(http.MethodPost, "/api/editor/compose", nil, "")
	s.patchDraft(url.Values{"content": {"*from the draft*"}})
	rec = s.do(http.MethodPost, "/api/editor/preview", nil, "")
	assert.Contains(t, rec.Body.String(), "<em>from the draft</em>")

	rec = s.do(http.MethodPost, "/api/editor/preview?view=source", nil, "")
	assert.Contains(t, rec.Body.String(), `class="markdown-editor"`)
}

func TestHandlerPreviewDoesNotRetainDrafts(t *testing.T) {
	s := newTestServer(t, media.Decoder{})
	cache.ClearRenderedPreviewCache()

	syntaxTheme := theme.Resolve("")
	for i := 0; i < 200; i++ {
		content := fmt.Sprintf("# Draft %d\n\nkeystroke %d", i, i)
		form := url.Values{"content": {content}}
		rec := s.do(http.MethodPost, "/api/editor/preview", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("Draft %d", i))

		_, cached := cache.GetRenderedPreview(util.ContentHashString(content), syntaxTheme)
		require.False(t, cached, "draft preview %d was cached", i)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNoActiveDraft, http.StatusConflict},
		{ErrStaleDraft, http.StatusConflict},
		{fmt.Errorf("%w: %q", ErrUnknownField, "x"), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", media.ErrDecodeFailed, media.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: %w", media.ErrDecodeFailed, media.ErrUnsupported), http.StatusUnsupportedMediaType},
		{repository.ErrValidationFailed, http.StatusUnprocessableEntity},
		{repository.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}
