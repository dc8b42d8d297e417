package server

import (
	"fmt"
	"net/http"
	"testing"

	"pingme/internal/config"
	"pingme/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	resp := call(t, s, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "healthy")

	resp = call(t, s, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestUnknownRoute_UsesErrorBody(t *testing.T) {
	s, _ := newTestServer(t)

	resp := call(t, s, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	var body models.ErrorResponse
	resp.decode(t, &body)
	assert.Equal(t, models.CodeNotFound, body.Code)
}

func TestSignupAndLogin(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{name: "missing fields", body: map[string]string{"name": "Ana"}, status: http.StatusBadRequest},
		{name: "bad email", body: map[string]string{"name": "Ana", "email": "ana", "password": "x"}, status: http.StatusBadRequest},
		{name: "created", body: map[string]string{"name": "Ana", "email": "ana@example.com", "password": "pw"}, status: http.StatusCreated},
		{name: "duplicate", body: map[string]string{"name": "Ana", "email": "ana@example.com", "password": "pw"}, status: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, s, http.MethodPost, "/users", tt.body, "")
			assert.Equal(t, tt.status, resp.Status, string(resp.Body))
		})
	}

	resp := call(t, s, http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = call(t, s, http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com", "password": "pw"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = call(t, s, http.MethodPost, "/auth/login", map[string]string{"email": "ANA@example.com", "password": "pw"}, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "access_token")
	assert.NotContains(t, string(resp.Body), "password")
}

func TestUserProfile(t *testing.T) {
	s, _ := newTestServer(t)
	anaID, anaToken := register(t, s, "Ana", "ana@example.com")
	_, biaToken := register(t, s, "Bia", "bia@example.com")

	path := fmt.Sprintf("/users/%d", anaID)
	update := map[string]string{"name": "Ana Maria", "biografia": "hi", "fotoPerfil": "http://img/ana.png"}

	assert.Equal(t, http.StatusUnauthorized, call(t, s, http.MethodPut, path, update, "").Status)
	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodPut, path, update, biaToken).Status)
	assert.Equal(t, http.StatusBadRequest, call(t, s, http.MethodPut, path, map[string]string{"name": " "}, anaToken).Status)

	resp := call(t, s, http.MethodPut, path, update, anaToken)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	resp = call(t, s, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	var user models.User
	resp.decode(t, &user)
	assert.Equal(t, "Ana Maria", user.Name)
	assert.Equal(t, "hi", user.Bio)
	assert.Equal(t, "http://img/ana.png", user.ProfilePhotoURL)

	assert.Equal(t, http.StatusNotFound, call(t, s, http.MethodGet, "/users/999", nil, "").Status)
	assert.Equal(t, http.StatusBadRequest, call(t, s, http.MethodGet, "/users/abc", nil, "").Status)
}

func TestPostsLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	anaID, anaToken := register(t, s, "Ana", "ana@example.com")
	biaID, biaToken := register(t, s, "Bia", "bia@example.com")

	body := map[string]any{"titulo": "Hello", "conteudo": "World", "tags": "go", "usuarioId": anaID}
	assert.Equal(t, http.StatusUnauthorized, call(t, s, http.MethodPost, "/postagens", body, "").Status)
	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodPost, "/postagens", body, biaToken).Status)
	assert.Equal(t, http.StatusBadRequest,
		call(t, s, http.MethodPost, "/postagens", map[string]any{"titulo": "only title"}, anaToken).Status)

	resp := call(t, s, http.MethodPost, "/postagens", body, anaToken)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var created models.Post
	resp.decode(t, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ana", created.Author.Name)

	resp = call(t, s, http.MethodPost, "/postagens", map[string]any{"titulo": "Bia's", "conteudo": "post"}, biaToken)
	require.Equal(t, http.StatusCreated, resp.Status)

	var all []models.Post
	resp = call(t, s, http.MethodGet, "/postagens", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	resp.decode(t, &all)
	assert.Len(t, all, 2)

	var mine []models.Post
	resp = call(t, s, http.MethodGet, fmt.Sprintf("/postagens/usuario/%d", biaID), nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	resp.decode(t, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "Bia's", mine[0].Title)
	assert.Equal(t, http.StatusNotFound, call(t, s, http.MethodGet, "/postagens/usuario/999", nil, "").Status)

	postPath := fmt.Sprintf("/postagens/%d", created.ID)
	edit := map[string]any{"titulo": "Hello again", "conteudo": "World", "tags": "go, fiber"}
	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodPut, postPath, edit, biaToken).Status)
	resp = call(t, s, http.MethodPut, postPath, edit, anaToken)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	var got models.Post
	resp = call(t, s, http.MethodGet, postPath, nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	resp.decode(t, &got)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, "go, fiber", got.Tags)

	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodDelete, postPath, nil, biaToken).Status)
	assert.Equal(t, http.StatusNoContent, call(t, s, http.MethodDelete, postPath, nil, anaToken).Status)
	assert.Equal(t, http.StatusNotFound, call(t, s, http.MethodGet, postPath, nil, "").Status)
}

func TestCommentsAndLikes(t *testing.T) {
	s, _ := newTestServer(t)
	_, anaToken := register(t, s, "Ana", "ana@example.com")
	biaID, biaToken := register(t, s, "Bia", "bia@example.com")

	resp := call(t, s, http.MethodPost, "/postagens", map[string]any{"titulo": "t", "conteudo": "b"}, anaToken)
	require.Equal(t, http.StatusCreated, resp.Status)
	var post models.Post
	resp.decode(t, &post)

	comment := map[string]any{"conteudo": "nice", "usuarioId": biaID, "postagemId": post.ID}
	assert.Equal(t, http.StatusBadRequest,
		call(t, s, http.MethodPost, "/comentarios", map[string]any{"conteudo": " ", "postagemId": post.ID}, biaToken).Status)
	assert.Equal(t, http.StatusNotFound,
		call(t, s, http.MethodPost, "/comentarios", map[string]any{"conteudo": "x", "postagemId": 999}, biaToken).Status)

	resp = call(t, s, http.MethodPost, "/comentarios", comment, biaToken)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var created models.Comment
	resp.decode(t, &created)
	assert.Equal(t, "Bia", created.Author.Name)

	var comments []models.Comment
	resp = call(t, s, http.MethodGet, fmt.Sprintf("/comentarios/%d", post.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	resp.decode(t, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Body)

	commentPath := fmt.Sprintf("/comentarios/%d", created.ID)
	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodDelete, commentPath, nil, anaToken).Status)
	assert.Equal(t, http.StatusNoContent, call(t, s, http.MethodDelete, commentPath, nil, biaToken).Status)

	likePath := fmt.Sprintf("/likes/%d/%d", post.ID, biaID)
	assert.Equal(t, http.StatusForbidden, call(t, s, http.MethodPost, likePath, nil, anaToken).Status)

	resp = call(t, s, http.MethodPost, likePath, nil, biaToken)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"liked":true}`, string(resp.Body))

	var likes []likeResponse
	resp = call(t, s, http.MethodGet, fmt.Sprintf("/likes/%d", post.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	resp.decode(t, &likes)
	require.Len(t, likes, 1)
	assert.Equal(t, biaID, likes[0].User.ID)
	assert.Equal(t, post.ID, likes[0].Post.ID)

	resp = call(t, s, http.MethodGet, fmt.Sprintf("/postagens/%d", post.ID), nil, "")
	var withLikes models.Post
	resp.decode(t, &withLikes)
	assert.Equal(t, 1, withLikes.LikeCount)

	resp = call(t, s, http.MethodPost, likePath, nil, biaToken)
	assert.JSONEq(t, `{"liked":false}`, string(resp.Body))
}

func TestPostMarkupIsSanitized(t *testing.T) {
	s, _ := newTestServer(t)
	_, token := register(t, s, "Ana", "ana@example.com")

	resp := call(t, s, http.MethodPost, "/postagens", map[string]any{
		"titulo":   "<i>Hi</i> & bye",
		"conteudo": `<script>alert(1)</script><b>bold</b>`,
		"tags":     "<em>go</em>",
	}, token)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var post models.Post
	resp.decode(t, &post)
	assert.Equal(t, "Hi &amp; bye", post.Title)
	assert.Equal(t, "<b>bold</b>", post.Body)
	assert.Equal(t, "go", post.Tags)

	plain := call(t, s, http.MethodPost, "/postagens", map[string]any{"titulo": "Tom & Jerry", "conteudo": "it's fine"}, token)
	require.Equal(t, http.StatusCreated, plain.Status)
	plain.decode(t, &post)
	assert.Equal(t, "Tom & Jerry", post.Title)
	assert.Equal(t, "it's fine", post.Body)

	assert.Equal(t, http.StatusBadRequest, call(t, s, http.MethodPost, "/postagens", map[string]any{
		"titulo": "x", "conteudo": "<script>only</script>",
	}, token).Status)
}

func TestLoginRateLimit(t *testing.T) {
	s, _ := newTestServerWith(t, func(cfg *config.Config) { cfg.LoginRatePerMinute = 2 })
	creds := map[string]string{"email": "nobody@example.com", "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, call(t, s, http.MethodPost, "/auth/login", creds, "").Status)
	resp := call(t, s, http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	var body models.ErrorResponse
	resp.decode(t, &body)
	assert.Equal(t, models.CodeRateLimited, body.Code)
}
