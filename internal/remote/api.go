package remote

import (
	"context"
	"fmt"
	"net/http"

	"pingme/internal/models"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, call{
		op: "login", method: http.MethodPost, path: "/auth/login",
		body: LoginRequest{Email: email, Password: password}, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	return c.do(ctx, call{
		op: "signup", method: http.MethodPost, path: "/users",
		body: SignupRequest{Name: name, Email: email, Password: password},
	})
}

func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	err := c.do(ctx, call{
		op: "get_user", method: http.MethodGet, path: fmt.Sprintf("/users/%d", id),
		out: &out, resource: "User", id: id,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req UserUpdateRequest) (*models.User, error) {
	var out models.User
	err := c.do(ctx, call{
		op: "update_user", method: http.MethodPut, path: fmt.Sprintf("/users/%d", id),
		body: req, out: &out, resource: "User", id: id,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.do(ctx, call{op: "list_posts", method: http.MethodGet, path: "/postagens", out: &out}); err != nil {
		return nil, err
	}
	return fixPosts(out), nil
}

func (c *Client) ListPostsByAuthor(ctx context.Context, userID int64) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, call{
		op: "list_posts_by_author", method: http.MethodGet, path: fmt.Sprintf("/postagens/usuario/%d", userID),
		out: &out, resource: "User", id: userID,
	})
	if err != nil {
		return nil, err
	}
	return fixPosts(out), nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var out models.Post
	err := c.do(ctx, call{
		op: "get_post", method: http.MethodGet, path: fmt.Sprintf("/postagens/%d", id),
		out: &out, resource: "Post", id: id,
	})
	if err != nil {
		return nil, err
	}
	out.AuthorID = out.Author.ID
	return &out, nil
}

func (c *Client) CreatePost(ctx context.Context, req PostRequest) (*models.Post, error) {
	var out models.Post
	err := c.do(ctx, call{op: "create_post", method: http.MethodPost, path: "/postagens", body: req, out: &out})
	if err != nil {
		return nil, err
	}
	out.AuthorID = out.Author.ID
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, req PostRequest) (*models.Post, error) {
	var out models.Post
	err := c.do(ctx, call{
		op: "update_post", method: http.MethodPut, path: fmt.Sprintf("/postagens/%d", id),
		body: req, out: &out, resource: "Post", id: id,
	})
	if err != nil {
		return nil, err
	}
	out.AuthorID = out.Author.ID
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op: "delete_post", method: http.MethodDelete, path: fmt.Sprintf("/postagens/%d", id),
		resource: "Post", id: id,
	})
}

func (c *Client) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var out []models.Comment
	err := c.do(ctx, call{
		op: "list_comments", method: http.MethodGet, path: fmt.Sprintf("/comentarios/%d", postID),
		out: &out, resource: "Post", id: postID,
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].PostID = postID
		out[i].AuthorID = out[i].Author.ID
	}
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, req CommentRequest) (*models.Comment, error) {
	var out models.Comment
	err := c.do(ctx, call{op: "create_comment", method: http.MethodPost, path: "/comentarios", body: req, out: &out})
	if err != nil {
		return nil, err
	}
	out.PostID = req.PostID
	out.AuthorID = out.Author.ID
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op: "delete_comment", method: http.MethodDelete, path: fmt.Sprintf("/comentarios/%d", id),
		resource: "Comment", id: id,
	})
}

func (c *Client) ListLikes(ctx context.Context, postID int64) ([]LikeRecord, error) {
	var out []LikeRecord
	err := c.do(ctx, call{op: "list_likes", method: http.MethodGet, path: fmt.Sprintf("/likes/%d", postID), out: &out})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleLike flips the like of userID on postID server-side.
func (c *Client) ToggleLike(ctx context.Context, postID, userID int64) error {
	return c.do(ctx, call{
		op: "toggle_like", method: http.MethodPost, path: fmt.Sprintf("/likes/%d/%d", postID, userID),
		resource: "Post", id: postID,
	})
}

func fixPosts(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	for i := range posts {
		posts[i].AuthorID = posts[i].Author.ID
	}
	return posts
}
