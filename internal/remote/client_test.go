package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pingme/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		wantID int64
	}{
		{"numeric user id", `{"access_token":"tok","user_id":7}`, 7},
		{"string user id", `{"access_token":"tok","user_id":"8"}`, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/auth/login", r.URL.Path)
				assert.NotEmpty(t, r.Header.Get("X-Correlation-ID"))

				var req LoginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "a@b.c", req.Email)
				assert.Equal(t, "pw", req.Password)

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := c.Login(context.Background(), "a@b.c", "pw")
			require.NoError(t, err)
			assert.Equal(t, "tok", resp.AccessToken)
			assert.Equal(t, tt.wantID, int64(resp.UserID))
		})
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"not found", http.StatusNotFound, models.CodeNotFound},
		{"server error", http.StatusInternalServerError, models.CodeNetwork},
		{"unauthorized status", http.StatusUnauthorized, models.CodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.GetPost(context.Background(), 3)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(srv.URL)
	srv.Close()

	_, err := c.ListPosts(context.Background())
	assert.True(t, models.IsCode(err, models.CodeNetwork))
}

func TestClient_SingleRequestNoRetry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.DeletePost(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_SendsBearerToken(t *testing.T) {
	t.Parallel()
	var got atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})

	c.SetToken("abc")
	_, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got.Load())

	c.SetToken("")
	_, err = c.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestClient_ListPostsRestoresAuthorID(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/postagens/usuario/4", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"titulo":"t","conteudo":"c","tags":"a,b","data_criacao":"2025-01-02T03:04:05Z","usuario":{"id":4,"name":"Ana"},"likesCount":3}]`))
	})

	posts, err := c.ListPostsByAuthor(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(4), posts[0].AuthorID)
	assert.Equal(t, "Ana", posts[0].Author.Name)
	assert.Equal(t, 3, posts[0].LikeCount)
}

func TestClient_CreateCommentBody(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body["conteudo"])
		assert.EqualValues(t, 2, body["usuarioId"])
		assert.EqualValues(t, 9, body["postagemId"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":50,"conteudo":"hi","usuario":{"id":2}}`))
	})

	comment, err := c.CreateComment(context.Background(), CommentRequest{Body: "hi", UserID: 2, PostID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(50), comment.ID)
	assert.Equal(t, int64(9), comment.PostID)
	assert.Equal(t, int64(2), comment.AuthorID)
}

func TestClient_ListLikesAndToggle(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/likes/5":
			_, _ = w.Write([]byte(`[{"id":1,"postagem":{"id":5},"usuario":{"id":2}}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/likes/5/2":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	likes, err := c.ListLikes(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, int64(5), likes[0].Post.ID)
	assert.Equal(t, int64(2), likes[0].User.ID)

	assert.NoError(t, c.ToggleLike(context.Background(), 5, 2))
}

func TestClient_CanceledContext(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetUser(ctx, 1)
	assert.True(t, models.IsCode(err, models.CodeNetwork))
}

func TestFlexibleID_Invalid(t *testing.T) {
	t.Parallel()
	var id FlexibleID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Zero(t, id)
}
