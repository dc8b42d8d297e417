package server

import (
	"github.com/gofiber/fiber/v2"
)

type likeRef struct {
	ID int64 `json:"id"`
}

type likeResponse struct {
	ID   int64   `json:"id"`
	Post likeRef `json:"postagem"`
	User likeRef `json:"usuario"`
}

// GetLikes handles GET /likes/:postId
func (s *Server) GetLikes(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	likes, err := s.likeRepo.ListByPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]likeResponse, 0, len(likes))
	for _, l := range likes {
		out = append(out, likeResponse{ID: l.ID, Post: likeRef{ID: l.PostID}, User: likeRef{ID: l.UserID}})
	}
	return c.JSON(out)
}

// ToggleLike handles POST /likes/:postId/:userId. A user may only toggle
// their own like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	if userID != currentUserID(c) {
		return forbidden(c)
	}

	ctx := c.UserContext()
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return respondError(c, err)
	}
	liked, err := s.likeRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
