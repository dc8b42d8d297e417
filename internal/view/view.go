// Package view holds the page-level controllers: feed, profile and post
// detail. Each view guards its state with a mutex and de-duplicates
// in-flight actions by key.
package view

import (
	"context"
	"fmt"
	"strings"

	"pingme/internal/models"
	"pingme/internal/provider"
)

// State is the lifecycle of a view.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// SessionGate is what a view needs from the session manager.
type SessionGate interface {
	RequireActive(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
}

// NativeSharer is a platform share sheet.
type NativeSharer interface {
	Share(ctx context.Context, title, url string) error
}

// Clipboard receives copied links.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Deps are the collaborators injected into every view. Sharer, Clipboard and
// Notifier are optional.
type Deps struct {
	Session   SessionGate
	Provider  provider.Provider
	Origin    string
	Sharer    NativeSharer
	Clipboard Clipboard
	Notifier  Notifier
}

var (
	errNotLoaded = models.NewValidationError("view not loaded")
	errNotAuthor = models.NewUnauthorizedError("only the author can change this post")
)

// PostURL is the canonical link of a post.
func PostURL(origin string, id int64) string {
	return fmt.Sprintf("%s/postagem/%d", strings.TrimRight(origin, "/"), id)
}

// copyLink copies url to the clipboard and notifies.
func (d Deps) copyLink(ctx context.Context, url, message string) error {
	if d.Clipboard != nil {
		if err := d.Clipboard.Copy(ctx, url); err != nil {
			return fmt.Errorf("copy link: %w", err)
		}
	}
	if d.Notifier != nil {
		d.Notifier.Notify(ctx, message)
	}
	return nil
}

func actionKey(action string, id int64) string {
	return fmt.Sprintf("%s:%d", action, id)
}

func findPost(posts []models.Post, id int64) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func removePostAt(posts []models.Post, i int) []models.Post {
	out := make([]models.Post, 0, len(posts)-1)
	out = append(out, posts[:i]...)
	return append(out, posts[i+1:]...)
}

func insertPostAt(posts []models.Post, i int, p models.Post) []models.Post {
	if i > len(posts) {
		i = len(posts)
	}
	out := make([]models.Post, 0, len(posts)+1)
	out = append(out, posts[:i]...)
	out = append(out, p)
	return append(out, posts[i:]...)
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}

func validatePostInput(in models.PostInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return models.NewValidationError("title and content are required")
	}
	return nil
}
