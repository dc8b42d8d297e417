package provider

import (
	"context"

	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/observability"
)

// MockProvider serves everything from the local mock store. Likes are kept
// only in view state.
type MockProvider struct {
	store *mockstore.Store
	log   *observability.ProviderLogger
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider returns a provider over store.
func NewMockProvider(store *mockstore.Store) *MockProvider {
	return &MockProvider{store: store, log: observability.NewProviderLogger(string(ModeMock))}
}

func (p *MockProvider) Mode() Mode { return ModeMock }

func (p *MockProvider) GetUser(ctx context.Context, id int64) (*models.User, error) {
	data, err := p.store.Read(ctx)
	if err != nil {
		p.log.LogError(ctx, err, "get_user")
		return nil, err
	}
	if data.User == nil || data.User.ID != id {
		return nil, models.NewNotFoundError("User", id)
	}
	return data.User, nil
}

func (p *MockProvider) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	data, err := p.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if data.User == nil || data.User.ID != user.ID {
		return nil, models.NewNotFoundError("User", user.ID)
	}

	updated := *data.User
	updated.Name = user.Name
	updated.Bio = user.Bio
	updated.ProfilePhotoURL = user.ProfilePhotoURL
	if err := p.store.SaveUser(ctx, updated); err != nil {
		p.log.LogError(ctx, err, "update_user")
		return nil, err
	}
	p.log.LogOperation(ctx, "update_user", map[string]any{"user_id": user.ID})
	return &updated, nil
}

func (p *MockProvider) ListPosts(ctx context.Context) ([]models.Post, error) {
	data, err := p.store.Read(ctx)
	if err != nil {
		p.log.LogError(ctx, err, "list_posts")
		return nil, err
	}
	models.SortNewestFirst(data.Posts)
	return data.Posts, nil
}

func (p *MockProvider) ListPostsByAuthor(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := p.store.ListByAuthor(ctx, userID)
	if err != nil {
		p.log.LogError(ctx, err, "list_posts_by_author")
		return nil, err
	}
	models.SortNewestFirst(posts)
	return posts, nil
}

func (p *MockProvider) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *MockProvider) CreatePost(ctx context.Context, _ int64, in models.PostInput) (*models.Post, error) {
	post, err := p.store.Create(ctx, in)
	if err != nil {
		p.log.LogError(ctx, err, "create_post")
		return nil, err
	}
	p.log.LogOperation(ctx, "create_post", map[string]any{"post_id": post.ID})
	return &post, nil
}

func (p *MockProvider) UpdatePost(ctx context.Context, _ int64, id int64, in models.PostInput) (*models.Post, error) {
	post, err := p.store.Update(ctx, id, in.Patch())
	if err != nil {
		p.log.LogError(ctx, err, "update_post")
		return nil, err
	}
	p.log.LogOperation(ctx, "update_post", map[string]any{"post_id": id})
	return &post, nil
}

func (p *MockProvider) DeletePost(ctx context.Context, id int64) error {
	if err := p.store.Delete(ctx, id); err != nil {
		p.log.LogError(ctx, err, "delete_post")
		return err
	}
	p.log.LogOperation(ctx, "delete_post", map[string]any{"post_id": id})
	return nil
}

func (p *MockProvider) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return p.store.ListComments(ctx, postID)
}

func (p *MockProvider) CreateComment(ctx context.Context, _ int64, postID int64, body string) (*models.Comment, error) {
	c, err := p.store.AddComment(ctx, postID, body)
	if err != nil {
		p.log.LogError(ctx, err, "create_comment")
		return nil, err
	}
	return &c, nil
}

func (p *MockProvider) DeleteComment(ctx context.Context, id int64) error {
	if err := p.store.DeleteComment(ctx, id); err != nil {
		p.log.LogError(ctx, err, "delete_comment")
		return err
	}
	return nil
}

// HasLiked is always false: a mock post detail starts unliked.
func (p *MockProvider) HasLiked(context.Context, int64, int64) (bool, error) {
	return false, nil
}

// ToggleLike succeeds without persisting anything.
func (p *MockProvider) ToggleLike(ctx context.Context, postID, userID int64) error {
	p.log.LogOperation(ctx, "toggle_like", map[string]any{"post_id": postID, "user_id": userID})
	return nil
}
