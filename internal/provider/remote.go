package provider

import (
	"context"

	"pingme/internal/models"
	"pingme/internal/observability"
	"pingme/internal/remote"
)

// RemoteProvider forwards every operation to the REST API.
type RemoteProvider struct {
	client *remote.Client
	log    *observability.ProviderLogger
}

var _ Provider = (*RemoteProvider)(nil)

// NewRemoteProvider returns a provider over client.
func NewRemoteProvider(client *remote.Client) *RemoteProvider {
	return &RemoteProvider{client: client, log: observability.NewProviderLogger(string(ModeRemote))}
}

func (p *RemoteProvider) Mode() Mode { return ModeRemote }

func (p *RemoteProvider) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return p.client.GetUser(ctx, id)
}

func (p *RemoteProvider) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	updated, err := p.client.UpdateUser(ctx, user.ID, remote.UserUpdateRequest{
		Name:            user.Name,
		Bio:             user.Bio,
		ProfilePhotoURL: user.ProfilePhotoURL,
	})
	if err != nil {
		p.log.LogError(ctx, err, "update_user")
		return nil, err
	}
	return updated, nil
}

func (p *RemoteProvider) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := p.client.ListPosts(ctx)
	if err != nil {
		p.log.LogError(ctx, err, "list_posts")
		return nil, err
	}
	models.SortNewestFirst(posts)
	return posts, nil
}

func (p *RemoteProvider) ListPostsByAuthor(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := p.client.ListPostsByAuthor(ctx, userID)
	if err != nil {
		p.log.LogError(ctx, err, "list_posts_by_author")
		return nil, err
	}
	models.SortNewestFirst(posts)
	return posts, nil
}

func (p *RemoteProvider) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return p.client.GetPost(ctx, id)
}

func (p *RemoteProvider) CreatePost(ctx context.Context, authorID int64, in models.PostInput) (*models.Post, error) {
	post, err := p.client.CreatePost(ctx, postRequest(authorID, in))
	if err != nil {
		p.log.LogError(ctx, err, "create_post")
		return nil, err
	}
	p.log.LogOperation(ctx, "create_post", map[string]any{"post_id": post.ID})
	return post, nil
}

func (p *RemoteProvider) UpdatePost(ctx context.Context, authorID, id int64, in models.PostInput) (*models.Post, error) {
	post, err := p.client.UpdatePost(ctx, id, postRequest(authorID, in))
	if err != nil {
		p.log.LogError(ctx, err, "update_post")
		return nil, err
	}
	return post, nil
}

func (p *RemoteProvider) DeletePost(ctx context.Context, id int64) error {
	if err := p.client.DeletePost(ctx, id); err != nil {
		p.log.LogError(ctx, err, "delete_post")
		return err
	}
	return nil
}

func (p *RemoteProvider) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return p.client.ListComments(ctx, postID)
}

func (p *RemoteProvider) CreateComment(ctx context.Context, authorID, postID int64, body string) (*models.Comment, error) {
	c, err := p.client.CreateComment(ctx, remote.CommentRequest{Body: body, UserID: authorID, PostID: postID})
	if err != nil {
		p.log.LogError(ctx, err, "create_comment")
		return nil, err
	}
	return c, nil
}

func (p *RemoteProvider) DeleteComment(ctx context.Context, id int64) error {
	if err := p.client.DeleteComment(ctx, id); err != nil {
		p.log.LogError(ctx, err, "delete_comment")
		return err
	}
	return nil
}

// HasLiked reports whether the like list of postID holds the (post, user) pair.
func (p *RemoteProvider) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	likes, err := p.client.ListLikes(ctx, postID)
	if err != nil {
		return false, err
	}
	for _, l := range likes {
		if l.Post.ID == postID && l.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (p *RemoteProvider) ToggleLike(ctx context.Context, postID, userID int64) error {
	if err := p.client.ToggleLike(ctx, postID, userID); err != nil {
		p.log.LogError(ctx, err, "toggle_like")
		return err
	}
	return nil
}

func postRequest(authorID int64, in models.PostInput) remote.PostRequest {
	return remote.PostRequest{
		Title:    in.Title,
		Body:     in.Body,
		Tags:     in.Tags,
		PhotoURL: in.PhotoURL,
		UserID:   authorID,
	}
}
