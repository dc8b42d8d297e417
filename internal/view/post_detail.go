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

const postDetailView = "post_detail"

// PostDetail is the single-post page with its comments and like state.
type PostDetail struct {
	deps Deps
	now  func() time.Time
	sf   singleflight.Group

	mu          sync.Mutex
	state       State
	session     *models.Session
	currentUser *models.User
	post        *models.Post
	notFound    bool
	deleted     bool
	comments    []models.Comment
	liked       bool
	likeCount   int
	lastTempID  int64
}

// PostDetailSnapshot is a copy of the post detail state.
type PostDetailSnapshot struct {
	State       State
	NotFound    bool
	Deleted     bool
	CurrentUser *models.User
	Post        *models.Post
	Comments    []models.Comment
	Liked       bool
	LikeCount   int
}

// NewPostDetail returns a post detail view in the loading state.
func NewPostDetail(deps Deps) *PostDetail {
	return &PostDetail{deps: deps, now: time.Now, state: StateLoading}
}

// Load fetches the current user, the post, its comments and whether the
// current user liked it. A missing post leaves the view ready and NotFound.
func (v *PostDetail) Load(ctx context.Context, id int64) error {
	_, err, _ := v.sf.Do(actionKey("load", id), func() (any, error) {
		return nil, v.load(ctx, id)
	})
	return err
}

func (v *PostDetail) load(ctx context.Context, id int64) error {
	s, err := v.deps.Session.RequireActive(ctx)
	if err != nil {
		return err
	}
	ctx = observability.WithUserID(ctx, s.UserID)

	v.mu.Lock()
	v.session = s
	v.state = StateLoading
	v.mu.Unlock()

	user, err := v.deps.Provider.GetUser(ctx, s.UserID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "post detail: current user unavailable", "error", err)
	}

	post, postErr := v.deps.Provider.GetPost(ctx, id)
	if postErr != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.currentUser = user
		v.post = nil
		v.comments = nil
		v.notFound = models.IsCode(postErr, models.CodeNotFound)
		v.state = StateReady
		return postErr
	}

	comments, err := v.deps.Provider.ListComments(ctx, id)
	if err != nil {
		observability.Logger.WarnContext(ctx, "post detail: comments unavailable", "post_id", id, "error", err)
		comments = []models.Comment{}
	}
	liked, err := v.deps.Provider.HasLiked(ctx, id, s.UserID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "post detail: like state unavailable", "post_id", id, "error", err)
		liked = false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.currentUser = user
	v.post = post
	v.notFound = false
	v.deleted = false
	v.comments = comments
	v.liked = liked
	v.likeCount = post.LikeCount
	v.state = StateReady
	return nil
}

// Snapshot returns a copy of the current state.
func (v *PostDetail) Snapshot() PostDetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := PostDetailSnapshot{
		State:     v.state,
		NotFound:  v.notFound,
		Deleted:   v.deleted,
		Comments:  append([]models.Comment(nil), v.comments...),
		Liked:     v.liked,
		LikeCount: v.likeCount,
	}
	if v.currentUser != nil {
		u := *v.currentUser
		snap.CurrentUser = &u
	}
	if v.post != nil {
		p := *v.post
		snap.Post = &p
	}
	return snap
}

// loaded returns the session and post, or errNotLoaded. Caller holds mu.
func (v *PostDetail) loaded() (*models.Session, *models.Post, error) {
	if v.session == nil || v.post == nil || v.deleted {
		return nil, nil, errNotLoaded
	}
	return v.session, v.post, nil
}

// IsOwnPost reports whether the current user wrote the loaded post.
func (v *PostDetail) IsOwnPost() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, p, err := v.loaded()
	return err == nil && p.Author.ID == s.UserID
}

// ToggleLike flips the like flag and count; both are restored on failure.
func (v *PostDetail) ToggleLike(ctx context.Context) error {
	v.mu.Lock()
	s, p, err := v.loaded()
	v.mu.Unlock()
	if err != nil {
		return err
	}

	_, err, _ = v.sf.Do(actionKey("like", p.ID), func() (any, error) {
		var prevLiked bool
		var prevCount int
		return nil, optimistic(ctx, &v.mu, update{
			view:   postDetailView,
			action: "like",
			apply: func() {
				prevLiked, prevCount = v.liked, v.likeCount
				if v.liked {
					v.likeCount--
				} else {
					v.likeCount++
				}
				v.liked = !v.liked
			},
			confirm: func(ctx context.Context) error {
				return v.deps.Provider.ToggleLike(ctx, p.ID, s.UserID)
			},
			rollback: func() {
				v.liked, v.likeCount = prevLiked, prevCount
			},
		})
	})
	return err
}

// AddComment appends a temporary comment at once and replaces it with the
// stored one when the provider confirms. A blank body does nothing.
func (v *PostDetail) AddComment(ctx context.Context, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	v.mu.Lock()
	s, p, err := v.loaded()
	var author models.User
	if v.currentUser != nil {
		author = *v.currentUser
	}
	v.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if author.ID == 0 {
		author.ID = s.UserID
	}

	res, err, _ := v.sf.Do(actionKey("add_comment", p.ID)+":"+body, func() (any, error) {
		return v.addComment(ctx, s, p, author, body)
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Comment), nil
}

func (v *PostDetail) addComment(ctx context.Context, s *models.Session, p *models.Post, author models.User, body string) (*models.Comment, error) {
	var (
		temp   models.Comment
		stored *models.Comment
	)
	err := optimistic(ctx, &v.mu, update{
		view:   postDetailView,
		action: "add_comment",
		apply: func() {
			temp = models.Comment{ID: v.nextTempIDLocked(), Body: body, CreatedAt: v.now(), PostID: p.ID, AuthorID: s.UserID, Author: author}
			v.comments = append(v.comments, temp)
		},
		confirm: func(ctx context.Context) error {
			c, err := v.deps.Provider.CreateComment(ctx, s.UserID, p.ID, body)
			stored = c
			return err
		},
		commit: func() {
			v.comments = append(removeComment(v.comments, temp.ID), *stored)
		},
		rollback: func() {
			v.comments = removeComment(v.comments, temp.ID)
		},
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// nextTempIDLocked returns a negative id no stored comment can have, unique
// within the view even when the clock does not advance.
func (v *PostDetail) nextTempIDLocked() int64 {
	id := -v.now().UnixMilli()
	if v.lastTempID != 0 && id >= v.lastTempID {
		id = v.lastTempID - 1
	}
	v.lastTempID = id
	return id
}

// DeleteComment removes a comment written by the current user.
func (v *PostDetail) DeleteComment(ctx context.Context, id int64) error {
	v.mu.Lock()
	s, _, err := v.loaded()
	var target *models.Comment
	if err == nil {
		for i := range v.comments {
			if v.comments[i].ID == id {
				c := v.comments[i]
				target = &c
				break
			}
		}
	}
	v.mu.Unlock()
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundError("Comment", id)
	}
	if target.Author.ID != s.UserID {
		return models.NewUnauthorizedError("only the author can delete this comment")
	}

	_, err, _ = v.sf.Do(actionKey("delete_comment", id), func() (any, error) {
		var snapshot []models.Comment
		return nil, optimistic(ctx, &v.mu, update{
			view:   postDetailView,
			action: "delete_comment",
			apply: func() {
				snapshot = v.comments
				v.comments = removeComment(v.comments, id)
			},
			confirm: func(ctx context.Context) error {
				return v.deps.Provider.DeleteComment(ctx, id)
			},
			rollback: func() { v.comments = snapshot },
		})
	})
	return err
}

// UpdatePost edits the loaded post. Author only.
func (v *PostDetail) UpdatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}
	v.mu.Lock()
	s, p, err := v.loaded()
	v.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if p.Author.ID != s.UserID {
		return nil, models.NewUnauthorizedError("only the author can edit this post")
	}

	res, err, _ := v.sf.Do(actionKey("update", p.ID), func() (any, error) {
		var (
			previous models.Post
			updated  *models.Post
		)
		err := optimistic(ctx, &v.mu, update{
			view:   postDetailView,
			action: "update",
			apply: func() {
				previous = *v.post
				in.Patch().Apply(v.post)
			},
			confirm: func(ctx context.Context) error {
				u, err := v.deps.Provider.UpdatePost(ctx, s.UserID, p.ID, in)
				updated = u
				return err
			},
			commit: func() {
				// The like count shown here is view state; keep it.
				next := *updated
				next.LikeCount = v.likeCount
				v.post = &next
			},
			rollback: func() {
				prev := previous
				v.post = &prev
			},
		})
		return updated, err
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Post), nil
}

// DeletePost deletes the loaded post. Author only.
func (v *PostDetail) DeletePost(ctx context.Context) error {
	v.mu.Lock()
	s, p, err := v.loaded()
	v.mu.Unlock()
	if err != nil {
		return err
	}
	if p.Author.ID != s.UserID {
		return models.NewUnauthorizedError("only the author can delete this post")
	}

	_, err, _ = v.sf.Do(actionKey("delete", p.ID), func() (any, error) {
		return nil, optimistic(ctx, &v.mu, update{
			view:   postDetailView,
			action: "delete",
			apply:  func() { v.deleted = true },
			confirm: func(ctx context.Context) error {
				return v.deps.Provider.DeletePost(ctx, p.ID)
			},
			rollback: func() { v.deleted = false },
		})
	})
	return err
}

// Share uses the native share capability when present, otherwise copies the
// canonical link and notifies.
func (v *PostDetail) Share(ctx context.Context) (string, error) {
	v.mu.Lock()
	_, p, err := v.loaded()
	v.mu.Unlock()
	if err != nil {
		return "", err
	}

	url := PostURL(v.deps.Origin, p.ID)
	if v.deps.Sharer != nil {
		if err := v.deps.Sharer.Share(ctx, p.Title, url); err != nil {
			return "", err
		}
		return url, nil
	}
	if err := v.deps.copyLink(ctx, url, "link copied to clipboard"); err != nil {
		return "", err
	}
	return url, nil
}

func removeComment(comments []models.Comment, id int64) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
