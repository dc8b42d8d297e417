package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"pingme/internal/models"
	"pingme/internal/observability"

	"golang.org/x/sync/singleflight"
)

const feedView = "feed"

// Feed is the home page: every post, search, the create/edit modal and likes.
type Feed struct {
	deps Deps
	now  func() time.Time
	sf   singleflight.Group

	mu        sync.Mutex
	state     State
	session   *models.Session
	user      *models.User
	posts     []models.Post
	liked     map[int64]bool
	modalOpen bool
	editingID int64
	form      models.PostInput
}

// FeedSnapshot is a copy of the feed state.
type FeedSnapshot struct {
	State     State
	User      *models.User
	Posts     []models.Post
	Liked     map[int64]bool
	ModalOpen bool
	EditingID int64
	Form      models.PostInput
}

// NewFeed returns a feed in the loading state.
func NewFeed(deps Deps) *Feed {
	return &Feed{deps: deps, now: time.Now, state: StateLoading, liked: make(map[int64]bool)}
}

// Load checks the session and fetches the current user and all posts.
func (f *Feed) Load(ctx context.Context) error {
	_, err, _ := f.sf.Do("load", func() (any, error) {
		return nil, f.load(ctx)
	})
	return err
}

func (f *Feed) load(ctx context.Context) error {
	s, err := f.deps.Session.RequireActive(ctx)
	if err != nil {
		return err
	}
	ctx = observability.WithUserID(ctx, s.UserID)

	f.mu.Lock()
	f.session = s
	f.state = StateLoading
	f.mu.Unlock()

	user, err := f.deps.Provider.GetUser(ctx, s.UserID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "feed: current user unavailable", "error", err)
	}
	posts, listErr := f.deps.Provider.ListPosts(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if user != nil {
		f.user = user
	}
	if listErr == nil {
		f.posts = posts
	} else {
		observability.Logger.WarnContext(ctx, "feed: posts unavailable", "error", listErr)
	}
	f.state = StateReady
	return listErr
}

// Snapshot returns a copy of the current state.
func (f *Feed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	liked := make(map[int64]bool, len(f.liked))
	for id, v := range f.liked {
		liked[id] = v
	}
	var user *models.User
	if f.user != nil {
		u := *f.user
		user = &u
	}
	return FeedSnapshot{
		State:     f.state,
		User:      user,
		Posts:     clonePosts(f.posts),
		Liked:     liked,
		ModalOpen: f.modalOpen,
		EditingID: f.editingID,
		Form:      f.form,
	}
}

// Search filters the loaded posts by a case-insensitive substring of title,
// body or tags. An empty term returns every post.
func (f *Feed) Search(term string) []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()

	term = strings.TrimSpace(term)
	out := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out
}

// OpenCreate opens the modal with an empty form.
func (f *Feed) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modalOpen = true
	f.editingID = 0
	f.form = models.PostInput{}
}

// OpenEdit opens the modal prefilled with post id.
func (f *Feed) OpenEdit(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return errNotLoaded
	}
	i := findPost(f.posts, id)
	if i < 0 {
		return models.NewNotFoundError("Post", id)
	}
	p := f.posts[i]
	if p.Author.ID != f.session.UserID {
		return errNotAuthor
	}
	f.modalOpen = true
	f.editingID = id
	f.form = models.PostInput{Title: p.Title, Body: p.Body, Tags: p.Tags, PhotoURL: p.PhotoURL}
	return nil
}

// CloseModal closes the modal and clears the form.
func (f *Feed) CloseModal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeModalLocked()
}

func (f *Feed) closeModalLocked() {
	f.modalOpen = false
	f.editingID = 0
	f.form = models.PostInput{}
}

// Submit creates a post, or updates the one being edited. On success the
// modal closes and the form is cleared.
func (f *Feed) Submit(ctx context.Context, form models.PostInput) (*models.Post, error) {
	if err := validatePostInput(form); err != nil {
		return nil, err
	}

	f.mu.Lock()
	session := f.session
	editingID := f.editingID
	var authorErr error
	if session != nil && editingID != 0 {
		authorErr = f.checkAuthorLocked(session, editingID)
	}
	f.form = form
	f.mu.Unlock()
	if session == nil {
		return nil, errNotLoaded
	}
	if authorErr != nil {
		return nil, authorErr
	}

	v, err, _ := f.sf.Do(actionKey("submit", editingID), func() (any, error) {
		if editingID != 0 {
			return f.update(ctx, session, editingID, form)
		}
		return f.create(ctx, session, form)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Post), nil
}

func (f *Feed) create(ctx context.Context, s *models.Session, form models.PostInput) (*models.Post, error) {
	var created *models.Post
	draft := models.Post{
		ID:        -f.now().UnixMilli(),
		Title:     form.Title,
		Body:      form.Body,
		Tags:      form.Tags,
		PhotoURL:  form.PhotoURL,
		CreatedAt: f.now(),
		AuthorID:  s.UserID,
	}

	err := optimistic(ctx, &f.mu, update{
		view:   feedView,
		action: "create",
		apply: func() {
			if f.user != nil {
				draft.Author = *f.user
			}
			f.posts = insertPostAt(f.posts, 0, draft)
		},
		confirm: func(ctx context.Context) error {
			p, err := f.deps.Provider.CreatePost(ctx, s.UserID, form)
			created = p
			return err
		},
		commit: func() {
			if i := findPost(f.posts, draft.ID); i >= 0 {
				f.posts[i] = *created
			}
			f.closeModalLocked()
		},
		rollback: func() {
			if i := findPost(f.posts, draft.ID); i >= 0 {
				f.posts = removePostAt(f.posts, i)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (f *Feed) update(ctx context.Context, s *models.Session, id int64, form models.PostInput) (*models.Post, error) {
	var (
		updated  *models.Post
		previous models.Post
		found    bool
	)

	err := optimistic(ctx, &f.mu, update{
		view:   feedView,
		action: "update",
		apply: func() {
			if i := findPost(f.posts, id); i >= 0 {
				previous, found = f.posts[i], true
				form.Patch().Apply(&f.posts[i])
			}
		},
		confirm: func(ctx context.Context) error {
			p, err := f.deps.Provider.UpdatePost(ctx, s.UserID, id, form)
			updated = p
			return err
		},
		commit: func() {
			if i := findPost(f.posts, id); i >= 0 {
				f.posts[i] = *updated
			}
			f.closeModalLocked()
		},
		rollback: func() {
			if i := findPost(f.posts, id); i >= 0 && found {
				f.posts[i] = previous
			}
		},
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes one of the user's posts right away. There is no
// confirmation step.
func (f *Feed) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	session := f.session
	var err error
	if session == nil {
		err = errNotLoaded
	} else {
		err = f.checkAuthorLocked(session, id)
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}

	_, err, _ = f.sf.Do(actionKey("delete", id), func() (any, error) {
		var (
			removed models.Post
			index   = -1
		)
		return nil, optimistic(ctx, &f.mu, update{
			view:   feedView,
			action: "delete",
			apply: func() {
				if i := findPost(f.posts, id); i >= 0 {
					removed, index = f.posts[i], i
					f.posts = removePostAt(f.posts, i)
				}
			},
			confirm: func(ctx context.Context) error {
				return f.deps.Provider.DeletePost(ctx, id)
			},
			rollback: func() {
				if index >= 0 {
					f.posts = insertPostAt(f.posts, index, removed)
				}
			},
		})
	})
	return err
}

// checkAuthorLocked fails unless post id is in the feed and written by the
// session user.
func (f *Feed) checkAuthorLocked(s *models.Session, id int64) error {
	i := findPost(f.posts, id)
	if i < 0 {
		return models.NewNotFoundError("Post", id)
	}
	if f.posts[i].Author.ID != s.UserID {
		return errNotAuthor
	}
	return nil
}

// ToggleLike flips the like on a post and adjusts its count by one.
func (f *Feed) ToggleLike(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	session := f.session
	f.mu.Unlock()
	if session == nil {
		return false, errNotLoaded
	}

	v, err, _ := f.sf.Do(actionKey("like", id), func() (any, error) {
		var wasLiked bool
		flip := func(liked bool) {
			if liked {
				f.liked[id] = true
			} else {
				delete(f.liked, id)
			}
			if i := findPost(f.posts, id); i >= 0 {
				if liked {
					f.posts[i].LikeCount++
				} else {
					f.posts[i].LikeCount--
				}
			}
		}

		err := optimistic(ctx, &f.mu, update{
			view:   feedView,
			action: "like",
			apply: func() {
				wasLiked = f.liked[id]
				flip(!wasLiked)
			},
			confirm: func(ctx context.Context) error {
				return f.deps.Provider.ToggleLike(ctx, id, session.UserID)
			},
			rollback: func() { flip(wasLiked) },
		})
		return !wasLiked, err
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ShareLink copies the canonical link of a post.
func (f *Feed) ShareLink(ctx context.Context, id int64) (string, error) {
	url := PostURL(f.deps.Origin, id)
	if err := f.deps.copyLink(ctx, url, "link copied"); err != nil {
		return "", err
	}
	return url, nil
}

// Logout clears the session.
func (f *Feed) Logout(ctx context.Context) error {
	if err := f.deps.Session.Logout(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
	f.user = nil
	f.posts = nil
	f.liked = make(map[int64]bool)
	f.state = StateLoading
	f.closeModalLocked()
	return nil
}
