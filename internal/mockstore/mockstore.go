// Package mockstore is the local stand-in for the remote API. It keeps one
// user record, the post collection and mock-mode comments as JSON blobs in
// the persisted namespace.
package mockstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"pingme/internal/kv"
	"pingme/internal/models"
)

// Keys owned by the mock store.
const (
	KeyUser     = "mock_user"
	KeyPosts    = "mock_posts"
	KeyComments = "mock_comments"
)

// Data is the full mock dataset.
type Data struct {
	User  *models.User  `json:"user"`
	Posts []models.Post `json:"posts"`
}

// Store reads and writes the whole mock blob on every call.
type Store struct {
	kv  kv.Store
	now func() time.Time
	mu  sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a mock store over the given namespace.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether the mock post collection is present. Its presence
// switches the whole client into mock mode.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	_, ok, err := s.kv.Get(ctx, KeyPosts)
	if err != nil {
		return false, fmt.Errorf("check mock posts: %w", err)
	}
	return ok, nil
}

// Read returns the mock user and posts. A missing user yields a nil User.
func (s *Store) Read(ctx context.Context) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Seed stores user as the mock user and, when no post collection exists
// yet, stores posts as the initial collection.
func (s *Store) Seed(ctx context.Context, user models.User, posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(ctx, KeyUser, user); err != nil {
		return err
	}
	_, ok, err := s.kv.Get(ctx, KeyPosts)
	if err != nil {
		return fmt.Errorf("check mock posts: %w", err)
	}
	if ok {
		return nil
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return s.writeJSON(ctx, KeyPosts, posts)
}

// SaveUser replaces the mock user record. Posts keep their author snapshot.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(ctx, KeyUser, user)
}

// Get returns the post with the given id.
func (s *Store) Get(ctx context.Context, id int64) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return models.Post{}, err
	}
	for _, p := range data.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, models.NewNotFoundError("Post", id)
}

// Create prepends a new post authored by the current mock user.
func (s *Store) Create(ctx context.Context, in models.PostInput) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return models.Post{}, err
	}
	if data.User == nil {
		return models.Post{}, models.NewUnauthorizedError("no mock user")
	}

	now := s.now()
	post := models.Post{
		ID:        s.nextID(now, data.Posts),
		Title:     in.Title,
		Body:      in.Body,
		Tags:      in.Tags,
		PhotoURL:  in.PhotoURL,
		CreatedAt: now,
		AuthorID:  data.User.ID,
		Author:    *data.User,
	}

	posts := append([]models.Post{post}, data.Posts...)
	if err := s.writeJSON(ctx, KeyPosts, posts); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Update merges patch into the post with the given id.
func (s *Store) Update(ctx context.Context, id int64, patch models.PostPatch) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return models.Post{}, err
	}
	for i := range data.Posts {
		if data.Posts[i].ID != id {
			continue
		}
		patch.Apply(&data.Posts[i])
		if err := s.writeJSON(ctx, KeyPosts, data.Posts); err != nil {
			return models.Post{}, err
		}
		return data.Posts[i], nil
	}
	return models.Post{}, models.NewNotFoundError("Post", id)
}

// Delete removes the post with the given id along with its comments.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.Post, 0, len(data.Posts))
	for _, p := range data.Posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(data.Posts) {
		return models.NewNotFoundError("Post", id)
	}
	if err := s.writeJSON(ctx, KeyPosts, kept); err != nil {
		return err
	}

	comments, err := s.readComments(ctx)
	if err != nil {
		return err
	}
	key := strconv.FormatInt(id, 10)
	if _, ok := comments[key]; ok {
		delete(comments, key)
		return s.writeJSON(ctx, KeyComments, comments)
	}
	return nil
}

// ListByAuthor returns the posts whose author snapshot has the given id.
func (s *Store) ListByAuthor(ctx context.Context, userID int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0)
	for _, p := range data.Posts {
		if p.Author.ID == userID {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (s *Store) read(ctx context.Context) (Data, error) {
	var data Data

	var user models.User
	ok, err := s.readJSON(ctx, KeyUser, &user)
	if err != nil {
		return Data{}, err
	}
	if ok {
		data.User = &user
	}

	if _, err := s.readJSON(ctx, KeyPosts, &data.Posts); err != nil {
		return Data{}, err
	}
	if data.Posts == nil {
		data.Posts = []models.Post{}
	}
	for i := range data.Posts {
		data.Posts[i].AuthorID = data.Posts[i].Author.ID
	}
	return data, nil
}

// nextID derives an id from the clock and bumps it past any collision.
func (s *Store) nextID(now time.Time, posts []models.Post) int64 {
	taken := make(map[int64]struct{}, len(posts))
	for _, p := range posts {
		taken[p.ID] = struct{}{}
	}
	return bumpID(now.UnixMilli(), taken)
}

func bumpID(id int64, taken map[int64]struct{}) int64 {
	for {
		if _, ok := taken[id]; !ok {
			return id
		}
		id++
	}
}

func (s *Store) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
