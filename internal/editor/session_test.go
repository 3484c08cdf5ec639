package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/folio/internal/media"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakePublisher struct {
	mu      sync.Mutex
	added   []model.Draft
	updated map[model.PostID]model.Draft
	posts   map[model.PostID]model.Post
	nextID  model.PostID
	failErr error
}

func newFakePublisher(posts ...model.Post) *fakePublisher {
	f := &fakePublisher{
		updated: map[model.PostID]model.Draft{},
		posts:   map[model.PostID]model.Post{},
		nextID:  100,
	}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePublisher) Add(_ context.Context, d model.Draft) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.added = append(f.added, d)
	f.nextID++
	post := model.Post{ID: f.nextID, Title: d.Title, Content: d.Content, Image: d.Image}
	f.posts[post.ID] = post
	return post, f.failErr
}

func (f *fakePublisher) Update(_ context.Context, id model.PostID, d model.Draft) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	post, ok := f.posts[id]
	if !ok {
		return model.Post{}, fmt.Errorf("%w: %d", repository.ErrNotFound, id)
	}
	f.updated[id] = d
	post.Title, post.Content = d.Title, d.Content
	if d.Image != "" {
		post.Image = d.Image
	}
	f.posts[id] = post
	return post, f.failErr
}

func existingPost() model.Post {
	return model.Post{
		ID:      7,
		Title:   "Old title",
		Content: "Old content",
		Image:   "https://example.com/old.png",
		Date:    "2024-01-01",
		Author:  "Sachin Oli",
	}
}

func TestStartCompose(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})

	assert.Equal(t, StateIdle, s.Snapshot().State)

	token := s.StartCompose()
	view := s.Snapshot()

	assert.NotEmpty(t, token)
	assert.Equal(t, StateComposing, view.State)
	assert.Equal(t, token, view.Token)
	assert.Equal(t, model.Draft{}, view.Draft)
	assert.Zero(t, view.Target)
}

func TestStartEditCopiesPost(t *testing.T) {
	post := existingPost()
	s := NewSession(newFakePublisher(post), media.Decoder{})

	s.StartEdit(post)
	view := s.Snapshot()

	assert.Equal(t, StateEditing, view.State)
	assert.Equal(t, post.ID, view.Target)
	assert.Equal(t, model.DraftOf(post), view.Draft)
}

func TestStartReplacesLiveDraft(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})

	first := s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "unsaved"))

	second := s.StartEdit(existingPost())

	assert.NotEqual(t, first, second)
	assert.Equal(t, "Old title", s.Snapshot().Draft.Title)
}

func TestSetField(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})

	err := s.SetField(FieldTitle, "x")
	assert.ErrorIs(t, err, ErrNoActiveDraft)

	s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "Title"))
	require.NoError(t, s.SetField(FieldContent, "Body"))
	require.NoError(t, s.SetField(FieldImage, "https://example.com/a.png"))

	assert.Equal(t, model.Draft{Title: "Title", Content: "Body", Image: "https://example.com/a.png"}, s.Snapshot().Draft)

	err = s.SetField(Field("author"), "someone")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCancel(t *testing.T) {
	pub := newFakePublisher()
	s := NewSession(pub, media.Decoder{})

	s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "Title"))
	s.Cancel()

	view := s.Snapshot()
	assert.Equal(t, StateIdle, view.State)
	assert.Equal(t, model.Draft{}, view.Draft)
	assert.Empty(t, view.Token)
	assert.Empty(t, pub.added)

	// Cancelling while idle is a no-op.
	s.Cancel()
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSubmitCompose(t *testing.T) {
	pub := newFakePublisher()
	s := NewSession(pub, media.Decoder{})

	s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "Hello"))
	require.NoError(t, s.SetField(FieldContent, "World"))

	post, from, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateComposing, from)
	assert.Equal(t, "Hello", post.Title)
	assert.Len(t, pub.added, 1)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSubmitIncompleteKeepsDraft(t *testing.T) {
	pub := newFakePublisher()
	s := NewSession(pub, media.Decoder{})

	s.StartCompose()
	require.NoError(t, s.SetField(FieldContent, "Body without a title"))

	_, _, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, repository.ErrValidationFailed)

	view := s.Snapshot()
	assert.Equal(t, StateComposing, view.State)
	assert.Equal(t, "Body without a title", view.Draft.Content)
	assert.Empty(t, pub.added)
}

func TestSubmitWhileIdle(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})

	_, _, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveDraft)
}

func TestSubmitEdit(t *testing.T) {
	post := existingPost()
	pub := newFakePublisher(post)
	s := NewSession(pub, media.Decoder{})

	s.StartEdit(post)
	require.NoError(t, s.SetField(FieldTitle, "New title"))

	updated, from, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateEditing, from)
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, post.Image, updated.Image)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSubmitEditOfRemovedPost(t *testing.T) {
	post := existingPost()
	s := NewSession(newFakePublisher(), media.Decoder{})

	s.StartEdit(post)
	_, _, err := s.Submit(context.Background())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, StateEditing, s.Snapshot().State)
}

func TestSubmitPersistFailureResets(t *testing.T) {
	pub := newFakePublisher()
	pub.failErr = fmt.Errorf("%w: disk full", repository.ErrPersistenceUnavailable)
	s := NewSession(pub, media.Decoder{})

	s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "Hello"))
	require.NoError(t, s.SetField(FieldContent, "World"))

	post, _, err := s.Submit(context.Background())

	assert.ErrorIs(t, err, repository.ErrPersistenceUnavailable)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("media decode did not finish")
		return nil
	}
}

func TestSelectMedia(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})

	_, _, err := s.SelectMedia(context.Background(), bytes.NewReader(pngHeader), "image/png")
	assert.ErrorIs(t, err, ErrNoActiveDraft)

	live := s.StartCompose()
	token, done, err := s.SelectMedia(context.Background(), bytes.NewReader(pngHeader), "image/png")
	require.NoError(t, err)
	assert.Equal(t, live, token)

	require.NoError(t, waitResult(t, done))
	assert.True(t, strings.HasPrefix(s.Snapshot().Draft.Image, "data:image/png;base64,"))
}

func TestSelectMediaFailureKeepsImage(t *testing.T) {
	post := existingPost()
	s := NewSession(newFakePublisher(post), media.Decoder{})
	s.StartEdit(post)

	_, done, err := s.SelectMedia(context.Background(), strings.NewReader("plain text"), "text/plain")
	require.NoError(t, err)

	err = waitResult(t, done)
	assert.ErrorIs(t, err, media.ErrUnsupported)
	assert.Equal(t, post.Image, s.Snapshot().Draft.Image)
}

func TestSelectMediaAfterCancelIsDropped(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})
	s.StartCompose()

	pr, pw := io.Pipe()
	_, done, err := s.SelectMedia(context.Background(), pr, "image/png")
	require.NoError(t, err)

	s.Cancel()
	s.StartCompose()

	_, _ = pw.Write(pngHeader)
	pw.Close()

	err = waitResult(t, done)
	assert.ErrorIs(t, err, ErrStaleDraft)
	assert.Empty(t, s.Snapshot().Draft.Image)
}

func TestSelectMediaAfterSubmitIsDropped(t *testing.T) {
	pub := newFakePublisher()
	s := NewSession(pub, media.Decoder{})
	s.StartCompose()
	require.NoError(t, s.SetField(FieldTitle, "Hello"))
	require.NoError(t, s.SetField(FieldContent, "World"))

	pr, pw := io.Pipe()
	_, done, err := s.SelectMedia(context.Background(), pr, "image/png")
	require.NoError(t, err)

	post, _, err := s.Submit(context.Background())
	require.NoError(t, err)

	_, _ = pw.Write(pngHeader)
	pw.Close()

	assert.ErrorIs(t, waitResult(t, done), ErrStaleDraft)
	assert.Empty(t, post.Image)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSelectMediaContextCancelled(t *testing.T) {
	s := NewSession(newFakePublisher(), media.Decoder{})
	s.StartCompose()

	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	_, done, err := s.SelectMedia(ctx, pr, "image/png")
	require.NoError(t, err)
	cancel()

	err = waitResult(t, done)
	assert.ErrorIs(t, err, media.ErrDecodeFailed)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "composing", StateComposing.String())
	assert.Equal(t, "editing", StateEditing.String())

	text, err := StateEditing.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "editing", string(text))
}
