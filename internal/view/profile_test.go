package view

import (
	"context"
	"testing"

	"pingme/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedProfile(t *testing.T, f *fixture, deps Deps, id int64) *Profile {
	t.Helper()
	v := NewProfile(deps)
	require.NoError(t, v.Load(f.ctx, id))
	return v
}

func strPtr(s string) *string { return &s }

func TestProfile_Load(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	snap := v.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.True(t, snap.IsOwn)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Test User", snap.User.Name)
	require.Len(t, snap.Posts, 3)
	assert.True(t, snap.Posts[0].CreatedAt.After(snap.Posts[1].CreatedAt))
}

func TestProfile_UnknownUserIsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := NewProfile(f.deps)

	err := v.Load(f.ctx, 99)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	snap := v.Snapshot()
	assert.True(t, snap.NotFound)
	assert.False(t, snap.IsOwn)
	require.NotNil(t, snap.CurrentUser)
}

func TestProfile_UpdateKeepsAuthorSnapshots(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	updated, err := v.UpdateProfile(f.ctx, models.UserPatch{Name: strPtr("New Name"), Bio: strPtr("new bio")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	snap := v.Snapshot()
	assert.Equal(t, "New Name", snap.User.Name)
	assert.Equal(t, "New Name", snap.CurrentUser.Name)
	assert.Equal(t, "new bio", snap.User.Bio)
	for _, p := range snap.Posts {
		assert.Equal(t, "Test User", p.Author.Name)
	}

	data, err := f.store.Read(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Name", data.User.Name)
	assert.Equal(t, "Test User", data.Posts[0].Author.Name)
}

func TestProfile_UpdateFailureRestores(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	stub := newStubProvider(f.deps.Provider)
	stub.updateUserFn = func(context.Context, models.User) (*models.User, error) { return nil, errNetwork }
	v := loadedProfile(t, f, f.withProvider(stub), 1)

	_, err := v.UpdateProfile(f.ctx, models.UserPatch{Name: strPtr("Nope")})
	require.Error(t, err)
	snap := v.Snapshot()
	assert.Equal(t, "Test User", snap.User.Name)
	assert.Equal(t, "Test User", snap.CurrentUser.Name)
}

func TestProfile_UpdateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	_, err := v.UpdateProfile(f.ctx, models.UserPatch{Name: strPtr("  ")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = NewProfile(f.deps).UpdateProfile(f.ctx, models.UserPatch{})
	assert.ErrorIs(t, err, errNotLoaded)
}

func TestProfile_OtherUsersProfileIsReadOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	v.mu.Lock()
	v.user = &models.User{ID: 2, Name: "Other"}
	v.posts = []models.Post{{ID: 70, Author: models.User{ID: 2}}}
	v.mu.Unlock()

	_, err := v.UpdateProfile(f.ctx, models.UserPatch{Name: strPtr("Hijack")})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	assert.True(t, models.IsCode(v.DeletePost(f.ctx, 70), models.CodeUnauthorized))
}

func TestProfile_DeletePost(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	require.NoError(t, v.DeletePost(f.ctx, 3))
	assert.Len(t, v.Snapshot().Posts, 2)

	data, err := f.store.Read(f.ctx)
	require.NoError(t, err)
	assert.Len(t, data.Posts, 2)

	assert.True(t, models.IsCode(v.DeletePost(f.ctx, 3), models.CodeNotFound))
}

func TestProfile_DeletePostFailureRestores(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	stub := newStubProvider(f.deps.Provider)
	stub.deletePostFn = func(context.Context, int64) error { return errNetwork }
	v := loadedProfile(t, f, f.withProvider(stub), 1)

	require.Error(t, v.DeletePost(f.ctx, 2))
	posts := v.Snapshot().Posts
	require.Len(t, posts, 3)
	assert.Equal(t, int64(2), posts[1].ID)
}

func TestProfile_ShareLinkWithoutClipboard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	v := loadedProfile(t, f, f.deps, 1)

	url, err := v.ShareLink(f.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/postagem/3", url)
}

func TestPostURL_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://pingme.example/postagem/12", PostURL("https://pingme.example/", 12))
}
