package mockstore

import (
	"context"
	"strconv"

	"pingme/internal/models"
)

// ListComments returns the comments of a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments, err := s.readComments(ctx)
	if err != nil {
		return nil, err
	}
	list := comments[strconv.FormatInt(postID, 10)]
	if list == nil {
		list = []models.Comment{}
	}
	return list, nil
}

// AddComment appends a comment by the mock user to a post.
func (s *Store) AddComment(ctx context.Context, postID int64, body string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	if data.User == nil {
		return models.Comment{}, models.NewUnauthorizedError("no mock user")
	}
	found := false
	for _, p := range data.Posts {
		if p.ID == postID {
			found = true
			break
		}
	}
	if !found {
		return models.Comment{}, models.NewNotFoundError("Post", postID)
	}

	comments, err := s.readComments(ctx)
	if err != nil {
		return models.Comment{}, err
	}

	taken := make(map[int64]struct{})
	for _, list := range comments {
		for _, c := range list {
			taken[c.ID] = struct{}{}
		}
	}

	now := s.now()
	comment := models.Comment{
		ID:        bumpID(now.UnixMilli(), taken),
		Body:      body,
		CreatedAt: now,
		PostID:    postID,
		AuthorID:  data.User.ID,
		Author:    *data.User,
	}

	key := strconv.FormatInt(postID, 10)
	comments[key] = append(comments[key], comment)
	if err := s.writeJSON(ctx, KeyComments, comments); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment by id from whichever post holds it.
func (s *Store) DeleteComment(ctx context.Context, commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments, err := s.readComments(ctx)
	if err != nil {
		return err
	}
	for key, list := range comments {
		for i, c := range list {
			if c.ID != commentID {
				continue
			}
			comments[key] = append(list[:i], list[i+1:]...)
			return s.writeJSON(ctx, KeyComments, comments)
		}
	}
	return models.NewNotFoundError("Comment", commentID)
}

func (s *Store) readComments(ctx context.Context) (map[string][]models.Comment, error) {
	comments := make(map[string][]models.Comment)
	if _, err := s.readJSON(ctx, KeyComments, &comments); err != nil {
		return nil, err
	}
	// PostID is not part of the wire form; restore it from the key.
	for key, list := range comments {
		postID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		for i := range list {
			list[i].PostID = postID
		}
	}
	return comments, nil
}
