package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pingme/internal/kv"
	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = models.User{ID: 1, Name: "Owner", Email: "owner@example.com"}

func seededMock(t *testing.T) *mockstore.Store {
	t.Helper()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store := mockstore.New(kv.NewMemoryStore())
	require.NoError(t, store.Seed(context.Background(), owner, []models.Post{
		{ID: 1, Title: "older", CreatedAt: now.Add(-time.Hour), Author: owner},
		{ID: 2, Title: "newer", CreatedAt: now, Author: owner},
	}))
	return store
}

func TestSelect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := remote.NewClient("http://127.0.0.1:1")

	empty := mockstore.New(kv.NewMemoryStore())
	p, err := Select(ctx, empty, client)
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, p.Mode())

	p, err = Select(ctx, seededMock(t), client)
	require.NoError(t, err)
	assert.Equal(t, ModeMock, p.Mode())
}

func TestMockProvider_ListPostsNewestFirst(t *testing.T) {
	t.Parallel()
	p := NewMockProvider(seededMock(t))

	posts, err := p.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)

	byAuthor, err := p.ListPostsByAuthor(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "newer", byAuthor[0].Title)
}

func TestMockProvider_Users(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMockProvider(seededMock(t))

	u, err := p.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Owner", u.Name)

	_, err = p.GetUser(ctx, 77)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	edited := *u
	edited.Name = "Renamed"
	edited.Email = "ignored@example.com"
	updated, err := p.UpdateUser(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, owner.Email, updated.Email)

	post, err := p.GetPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Owner", post.Author.Name)
}

func TestMockProvider_PostLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMockProvider(seededMock(t))

	created, err := p.CreatePost(ctx, owner.ID, models.PostInput{Title: "fresh", Body: "b"})
	require.NoError(t, err)

	updated, err := p.UpdatePost(ctx, owner.ID, created.ID, models.PostInput{Title: "edited", Body: "b2"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)

	comment, err := p.CreateComment(ctx, owner.ID, created.ID, "nice")
	require.NoError(t, err)
	comments, err := p.ListComments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NoError(t, p.DeleteComment(ctx, comment.ID))

	require.NoError(t, p.DeletePost(ctx, created.ID))
	_, err = p.GetPost(ctx, created.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestMockProvider_LikesAreLocal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMockProvider(seededMock(t))

	require.NoError(t, p.ToggleLike(ctx, 1, owner.ID))
	liked, err := p.HasLiked(ctx, 1, owner.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestRemoteProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /postagens", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"titulo":"old","data_criacao":"2025-01-01T00:00:00Z","usuario":{"id":2}},
			{"id":2,"titulo":"new","data_criacao":"2025-01-02T00:00:00Z","usuario":{"id":2}}
		]`))
	})
	mux.HandleFunc("GET /likes/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"postagem":{"id":2},"usuario":{"id":5}}]`))
	})
	mux.HandleFunc("PUT /users/5", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":5,"name":"Bea","biografia":"hi"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewRemoteProvider(remote.NewClient(srv.URL))

	posts, err := p.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Title)

	liked, err := p.HasLiked(ctx, 2, 5)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = p.HasLiked(ctx, 2, 6)
	require.NoError(t, err)
	assert.False(t, liked)

	u, err := p.UpdateUser(ctx, models.User{ID: 5, Name: "Bea", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", u.Bio)

	_, err = p.GetPost(ctx, 99)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
