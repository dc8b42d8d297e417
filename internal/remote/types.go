package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID decodes an id sent either as a JSON number or a string.
type FlexibleID int64

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", s, err)
		}
		*id = FlexibleID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexibleID(n)
	return nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	UserID      FlexibleID `json:"user_id"`
}

// SignupRequest is the body of POST /users.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest is the body of PUT /users/:id.
type UserUpdateRequest struct {
	Name            string `json:"name"`
	Bio             string `json:"biografia"`
	ProfilePhotoURL string `json:"fotoPerfil"`
}

// PostRequest is the body of POST and PUT /postagens.
type PostRequest struct {
	Title    string `json:"titulo"`
	Body     string `json:"conteudo"`
	Tags     string `json:"tags"`
	PhotoURL string `json:"foto"`
	UserID   int64  `json:"usuarioId"`
}

// CommentRequest is the body of POST /comentarios.
type CommentRequest struct {
	Body   string `json:"conteudo"`
	UserID int64  `json:"usuarioId"`
	PostID int64  `json:"postagemId"`
}

// LikeRef is the id-only reference used in like records.
type LikeRef struct {
	ID int64 `json:"id"`
}

// LikeRecord is one entry of GET /likes/:postId.
type LikeRecord struct {
	ID   int64   `json:"id"`
	Post LikeRef `json:"postagem"`
	User LikeRef `json:"usuario"`
}
