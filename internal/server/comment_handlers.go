package server

import (
	"strings"

	"pingme/internal/models"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Body   string `json:"conteudo"`
	UserID int64  `json:"usuarioId"`
	PostID int64  `json:"postagemId"`
}

// GetComments handles GET /comentarios/:postId, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return respondError(c, err)
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /comentarios
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Body = strings.TrimSpace(sanitizeBody(req.Body))
	if req.Body == "" || req.PostID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content and post are required"))
	}
	userID := currentUserID(c)
	if req.UserID != 0 && req.UserID != userID {
		return forbidden(c)
	}

	ctx := c.UserContext()
	if _, err := s.postRepo.GetByID(ctx, req.PostID); err != nil {
		return respondError(c, err)
	}

	comment := &models.Comment{Body: req.Body, PostID: req.PostID, AuthorID: userID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return respondError(c, err)
	}
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment handles DELETE /comentarios/:id. Only the author may delete.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if comment.AuthorID != currentUserID(c) {
		return forbidden(c)
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
