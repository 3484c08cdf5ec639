// Package editor implements the single-editor compose/edit workflow on top of the content store.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/media"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
)

var (
	ErrNoActiveDraft = errors.New("no draft is being composed or edited")
	ErrStaleDraft    = errors.New("draft was replaced before media finished decoding")
	ErrUnknownField  = errors.New("unknown draft field")
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

type State int

const (
	StateIdle State = iota
	StateComposing
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateComposing:
		return "composing"
	case StateEditing:
		return "editing"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldImage   Field = "image"
)

// Token identifies one live draft. A new token is issued on every compose or edit.
type Token string

// Publisher is the part of the content store a session writes to.
type Publisher interface {
	Add(ctx context.Context, draft model.Draft) (model.Post, error)
	Update(ctx context.Context, id model.PostID, draft model.Draft) (model.Post, error)
}

type View struct {
	State  State        `json:"state"`
	Target model.PostID `json:"target,omitempty"`
	Draft  model.Draft  `json:"draft"`
	Token  Token        `json:"token,omitempty"`
}

type Session struct {
	mu sync.Mutex

	store   Publisher
	decoder media.Decoder

	state  State
	target model.PostID
	draft  model.Draft
	token  Token
}

func NewSession(store Publisher, decoder media.Decoder) *Session {
	return &Session{
		store:   store,
		decoder: decoder,
	}
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		State:  s.state,
		Target: s.target,
		Draft:  s.draft,
		Token:  s.token,
	}
}

// begin replaces whatever draft is live. Callers hold s.mu.
func (s *Session) begin(state State, target model.PostID, draft model.Draft) Token {
	if s.state != StateIdle {
		editorLogger.Debug().Str("token", string(s.token)).Stringer("state", s.state).Msg("Abandoning draft")
	}

	s.state = state
	s.target = target
	s.draft = draft
	s.token = Token(uuid.NewString())
	return s.token
}

func (s *Session) reset() {
	s.state = StateIdle
	s.target = 0
	s.draft = model.Draft{}
	s.token = ""
}

func (s *Session) StartCompose() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(StateComposing, 0, model.Draft{})
}

func (s *Session) StartEdit(post model.Post) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(StateEditing, post.ID, model.DraftOf(post))
}

// Cancel discards the live draft, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) SetField(field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return ErrNoActiveDraft
	}

	switch field {
	case FieldTitle:
		s.draft.Title = value
	case FieldContent:
		s.draft.Content = value
	case FieldImage:
		s.draft.Image = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SelectMedia decodes r into a data URL in the background and stores it as the
// draft image. The result is dropped if the draft it was requested for is no
// longer live. The returned channel yields nil once the image is applied,
// ErrStaleDraft if it was dropped, or the decode error.
func (s *Session) SelectMedia(ctx context.Context, r io.Reader, declaredType string) (Token, <-chan error, error) {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return "", nil, ErrNoActiveDraft
	}
	token := s.token
	s.mu.Unlock()

	pending := s.decoder.DecodeAsync(ctx, r, declaredType)
	done := make(chan error, 1)

	go func() {
		res := <-pending
		err := s.applyMedia(token, res)
		if err != nil {
			editorLogger.Warn().Err(err).Str("token", string(token)).Msg(config.ErrDecodingMedia)
		}
		done <- err
		close(done)
	}()

	return token, done, nil
}

func (s *Session) applyMedia(token Token, res media.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle || s.token != token {
		return ErrStaleDraft
	}
	if res.Err != nil {
		return res.Err
	}

	s.draft.Image = res.DataURL
	return nil
}

// Submit publishes the live draft and reports the state it was submitted from.
// An incomplete draft is rejected and kept for correction. The session returns
// to idle once the store accepted the change, even if persisting it failed.
func (s *Session) Submit(ctx context.Context) (model.Post, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	if state == StateIdle {
		return model.Post{}, state, ErrNoActiveDraft
	}
	if !s.draft.Complete() {
		return model.Post{}, state, repository.ErrValidationFailed
	}

	var (
		post model.Post
		err  error
	)
	if state == StateComposing {
		post, err = s.store.Add(ctx, s.draft)
	} else {
		post, err = s.store.Update(ctx, s.target, s.draft)
	}

	if err != nil && !errors.Is(err, repository.ErrPersistenceUnavailable) {
		return model.Post{}, state, err
	}

	s.reset()
	return post, state, err
}
