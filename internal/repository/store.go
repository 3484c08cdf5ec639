// Package repository owns the ordered post collection and keeps it persisted in a storage slot.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/storage"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

type Options struct {
	// Slot key holding the serialized collection.
	Key string

	Author           string
	PlaceholderImage string

	Clock Clock
}

// ContentStore is the single owner of the post collection. Posts are kept
// newest first and every mutation rewrites the whole slot before returning.
type ContentStore struct {
	mu    sync.RWMutex
	posts []model.Post

	slot        storage.Slot
	key         string
	author      string
	placeholder string

	clock Clock
	ids   IDSource

	changeNotifier func(model.PostID)
}

func NewContentStore(slot storage.Slot, opts Options) *ContentStore {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	return &ContentStore{
		slot:        slot,
		key:         opts.Key,
		author:      opts.Author,
		placeholder: opts.PlaceholderImage,
		clock:       opts.Clock,
	}
}

// SetChangeNotifier sets a function that will be called after every mutation.
func (s *ContentStore) SetChangeNotifier(notifier func(model.PostID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeNotifier = notifier
}

func (s *ContentStore) notifyChange(id model.PostID) {
	s.mu.RLock()
	notifier := s.changeNotifier
	s.mu.RUnlock()

	if notifier != nil {
		notifier(id)
	}
}

// Load reads the persisted collection. Whenever the slot is empty, unreadable or
// corrupt the seed collection is returned, together with the reason for the
// latter two.
func (s *ContentStore) Load(ctx context.Context) ([]model.Post, error) {
	posts, _, err := s.load(ctx)
	return posts, err
}

func (s *ContentStore) load(ctx context.Context) ([]model.Post, []byte, error) {
	data, err := s.slot.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrEmpty):
		return model.SeedPosts(), nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		return model.SeedPosts(), nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	case err != nil:
		return model.SeedPosts(), nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	posts, err := decodePosts(data)
	if err != nil {
		return model.SeedPosts(), data, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return posts, data, nil
}

func decodePosts(data []byte) ([]model.Post, error) {
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		return nil, fmt.Errorf("expected a JSON array of posts")
	}

	seen := make(map[model.PostID]struct{}, len(posts))
	for _, p := range posts {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate post id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return posts, nil
}

// Init adopts the persisted collection as the current state. Corrupt data is
// copied aside under <key>.corrupt so the next mutation cannot destroy it.
func (s *ContentStore) Init(ctx context.Context) error {
	posts, raw, err := s.load(ctx)

	switch {
	case errors.Is(err, ErrCorruptData):
		repoLogger.Error().Err(err).Str("key", s.key).Msg("Persisted posts are corrupt, falling back to seed posts")
		if raw != nil {
			backupKey := s.key + config.CorruptSuffix
			if putErr := s.slot.Put(ctx, backupKey, raw); putErr != nil {
				return fmt.Errorf(config.ErrBackingUpCorruptFmt+": %w", backupKey, putErr)
			}
			repoLogger.Warn().Str("backup_key", backupKey).Int("bytes", len(raw)).Msg("Corrupt posts backed up")
		}
	case err != nil:
		repoLogger.Warn().Err(err).Str("key", s.key).Msg("Post storage unavailable, falling back to seed posts")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = posts
	for _, p := range posts {
		s.ids.Observe(p.ID)
	}

	repoLogger.Info().Int("posts", len(posts)).Msg("Posts loaded")
	return nil
}

// Persist serializes the full collection and overwrites the slot.
func (s *ContentStore) Persist(ctx context.Context, posts []model.Post) error {
	if posts == nil {
		posts = []model.Post{}
	}

	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("error encoding posts: %w", err)
	}

	if err := s.slot.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return nil
}

func (s *ContentStore) persistLocked(ctx context.Context) error {
	err := s.Persist(ctx, s.posts)
	if err != nil {
		repoLogger.Error().Err(err).Str("key", s.key).Msg(config.ErrPersistingPosts)
	}
	return err
}

// Posts returns a copy of the current collection, newest first.
func (s *ContentStore) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts)
}

func (s *ContentStore) Get(id model.PostID) (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.posts[i], true
	}
	return model.Post{}, false
}

func (s *ContentStore) indexOf(id model.PostID) int {
	return slices.IndexFunc(s.posts, func(p model.Post) bool { return p.ID == id })
}

// Add prepends a post built from draft. When only the persist step fails the
// post is returned along with an error wrapping ErrPersistenceUnavailable.
func (s *ContentStore) Add(ctx context.Context, draft model.Draft) (model.Post, error) {
	if !draft.Complete() {
		return model.Post{}, ErrValidationFailed
	}

	s.mu.Lock()

	now := s.clock.Now()
	post := model.Post{
		ID:      s.ids.Next(now),
		Title:   draft.Title,
		Content: draft.Content,
		Image:   draft.Image,
		Date:    now.UTC().Format(model.DateLayout),
		Author:  s.author,
	}
	if post.Image == "" {
		post.Image = s.placeholder
	}

	s.posts = slices.Insert(s.posts, 0, post)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	repoLogger.Info().Str("post_id", post.ID.String()).Str("title", post.Title).Msg("Post added")
	s.notifyChange(post.ID)

	return post, err
}

// Update replaces title and content of the post with the given id. The image
// is only replaced when the draft carries one.
func (s *ContentStore) Update(ctx context.Context, id model.PostID, draft model.Draft) (model.Post, error) {
	if !draft.Complete() {
		return model.Post{}, ErrValidationFailed
	}

	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Post{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	post := s.posts[i]
	post.Title = draft.Title
	post.Content = draft.Content
	if draft.Image != "" {
		post.Image = draft.Image
	}
	s.posts[i] = post

	err := s.persistLocked(ctx)
	s.mu.Unlock()

	repoLogger.Info().Str("post_id", post.ID.String()).Str("title", post.Title).Msg("Post updated")
	s.notifyChange(post.ID)

	return post, err
}

// Remove deletes the post with the given id and reports whether it existed.
func (s *ContentStore) Remove(ctx context.Context, id model.PostID) (bool, error) {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	s.posts = slices.Delete(s.posts, i, i+1)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	repoLogger.Info().Str("post_id", id.String()).Msg("Post removed")
	s.notifyChange(id)

	return true, err
}
