package view

import (
	"context"
	"strings"
	"sync"

	"pingme/internal/models"
	"pingme/internal/observability"

	"golang.org/x/sync/singleflight"
)

const profileView = "profile"

// Profile is a user's page: their details and their posts.
type Profile struct {
	deps Deps
	sf   singleflight.Group

	mu          sync.Mutex
	state       State
	session     *models.Session
	currentUser *models.User
	user        *models.User
	notFound    bool
	posts       []models.Post
}

// ProfileSnapshot is a copy of the profile state.
type ProfileSnapshot struct {
	State       State
	NotFound    bool
	CurrentUser *models.User
	User        *models.User
	Posts       []models.Post
	IsOwn       bool
}

// NewProfile returns a profile view in the loading state.
func NewProfile(deps Deps) *Profile {
	return &Profile{deps: deps, state: StateLoading}
}

// Load fetches the current user, the profile user and their posts, newest
// first.
func (v *Profile) Load(ctx context.Context, profileID int64) error {
	_, err, _ := v.sf.Do(actionKey("load", profileID), func() (any, error) {
		return nil, v.load(ctx, profileID)
	})
	return err
}

func (v *Profile) load(ctx context.Context, profileID int64) error {
	s, err := v.deps.Session.RequireActive(ctx)
	if err != nil {
		return err
	}
	ctx = observability.WithUserID(ctx, s.UserID)

	v.mu.Lock()
	v.session = s
	v.state = StateLoading
	v.mu.Unlock()

	current, err := v.deps.Provider.GetUser(ctx, s.UserID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "profile: current user unavailable", "error", err)
	}

	profile := current
	if profileID != s.UserID || current == nil {
		profile, err = v.deps.Provider.GetUser(ctx, profileID)
	}
	if err != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.currentUser = current
		v.user = nil
		v.posts = nil
		v.notFound = models.IsCode(err, models.CodeNotFound)
		v.state = StateReady
		return err
	}

	posts, listErr := v.deps.Provider.ListPostsByAuthor(ctx, profileID)
	if listErr != nil {
		observability.Logger.WarnContext(ctx, "profile: posts unavailable", "profile_id", profileID, "error", listErr)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.currentUser = current
	v.user = profile
	v.notFound = false
	if listErr == nil {
		models.SortNewestFirst(posts)
		v.posts = posts
	}
	v.state = StateReady
	return listErr
}

// Snapshot returns a copy of the current state.
func (v *Profile) Snapshot() ProfileSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := ProfileSnapshot{
		State:    v.state,
		NotFound: v.notFound,
		Posts:    clonePosts(v.posts),
		IsOwn:    v.isOwnLocked(),
	}
	if v.currentUser != nil {
		u := *v.currentUser
		snap.CurrentUser = &u
	}
	if v.user != nil {
		u := *v.user
		snap.User = &u
	}
	return snap
}

func (v *Profile) isOwnLocked() bool {
	return v.session != nil && v.user != nil && v.user.ID == v.session.UserID
}

// UpdateProfile edits name, bio and photo of the current user's own profile.
// Posts already on the page keep their author snapshot.
func (v *Profile) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, models.NewValidationError("name cannot be empty")
	}

	v.mu.Lock()
	loaded := v.session != nil && v.user != nil
	own := v.isOwnLocked()
	var userID int64
	if loaded {
		userID = v.user.ID
	}
	v.mu.Unlock()
	if !loaded {
		return nil, errNotLoaded
	}
	if !own {
		return nil, models.NewUnauthorizedError("only the owner can edit this profile")
	}

	res, err, _ := v.sf.Do(actionKey("update_profile", userID), func() (any, error) {
		var (
			prevUser    models.User
			prevCurrent *models.User
			edited      models.User
			saved       *models.User
		)
		err := optimistic(ctx, &v.mu, update{
			view:   profileView,
			action: "update_profile",
			apply: func() {
				prevUser = *v.user
				prevCurrent = v.currentUser
				edited = *v.user
				patch.Apply(&edited)
				v.setUserLocked(edited)
			},
			confirm: func(ctx context.Context) error {
				u, err := v.deps.Provider.UpdateUser(ctx, edited)
				saved = u
				return err
			},
			commit: func() { v.setUserLocked(*saved) },
			rollback: func() {
				u := prevUser
				v.user = &u
				v.currentUser = prevCurrent
			},
		})
		return saved, err
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.User), nil
}

// setUserLocked replaces the profile user and, being the same person, the
// current user. Caller holds mu.
func (v *Profile) setUserLocked(u models.User) {
	profile := u
	current := u
	v.user = &profile
	v.currentUser = &current
}

// DeletePost removes one of the current user's posts from the page.
func (v *Profile) DeletePost(ctx context.Context, id int64) error {
	v.mu.Lock()
	session := v.session
	i := findPost(v.posts, id)
	var authorID int64
	if i >= 0 {
		authorID = v.posts[i].Author.ID
	}
	v.mu.Unlock()
	if session == nil {
		return errNotLoaded
	}
	if i < 0 {
		return models.NewNotFoundError("Post", id)
	}
	if authorID != session.UserID {
		return models.NewUnauthorizedError("only the author can delete this post")
	}

	_, err, _ := v.sf.Do(actionKey("delete", id), func() (any, error) {
		var (
			removed models.Post
			index   = -1
		)
		return nil, optimistic(ctx, &v.mu, update{
			view:   profileView,
			action: "delete",
			apply: func() {
				if i := findPost(v.posts, id); i >= 0 {
					removed, index = v.posts[i], i
					v.posts = removePostAt(v.posts, i)
				}
			},
			confirm: func(ctx context.Context) error {
				return v.deps.Provider.DeletePost(ctx, id)
			},
			rollback: func() {
				if index >= 0 {
					v.posts = insertPostAt(v.posts, index, removed)
				}
			},
		})
	})
	return err
}

// ShareLink copies the canonical link of a post.
func (v *Profile) ShareLink(ctx context.Context, id int64) (string, error) {
	url := PostURL(v.deps.Origin, id)
	if err := v.deps.copyLink(ctx, url, "link copied"); err != nil {
		return "", err
	}
	return url, nil
}
