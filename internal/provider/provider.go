// Package provider hides whether data comes from the local mock store or the
// remote API. The choice is made once at startup and never mixed.
package provider

import (
	"context"
	"fmt"

	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/remote"
)

// Mode names a provider implementation.
type Mode string

const (
	ModeMock   Mode = "mock"
	ModeRemote Mode = "remote"
)

// Provider is the data source behind every view.
type Provider interface {
	Mode() Mode

	GetUser(ctx context.Context, id int64) (*models.User, error)
	// UpdateUser stores the editable fields of user.
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)

	// ListPosts and ListPostsByAuthor return posts newest first.
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListPostsByAuthor(ctx context.Context, userID int64) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, authorID int64, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, authorID, id int64, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error

	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, authorID, postID int64, body string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
	ToggleLike(ctx context.Context, postID, userID int64) error
}

// Select returns the mock provider when mock data exists, the remote one
// otherwise.
func Select(ctx context.Context, store *mockstore.Store, client *remote.Client) (Provider, error) {
	ok, err := store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("select provider: %w", err)
	}
	if ok {
		return NewMockProvider(store), nil
	}
	return NewRemoteProvider(client), nil
}
