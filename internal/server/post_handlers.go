package server

import (
	"strings"

	"pingme/internal/models"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title    string `json:"titulo"`
	Body     string `json:"conteudo"`
	Tags     string `json:"tags"`
	PhotoURL string `json:"foto"`
	UserID   int64  `json:"usuarioId"`
}

func (r *postRequest) validate() error {
	r.Title = strings.TrimSpace(sanitizePlain(r.Title))
	r.Body = strings.TrimSpace(sanitizeBody(r.Body))
	r.Tags = sanitizePlain(r.Tags)
	if r.Title == "" || r.Body == "" {
		return models.NewValidationError("Title and content are required")
	}
	return nil
}

// GetPosts handles GET /postagens, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /postagens/usuario/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return respondError(c, err)
	}
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /postagens/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /postagens
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return respondError(c, err)
	}
	userID := currentUserID(c)
	if req.UserID != 0 && req.UserID != userID {
		return forbidden(c)
	}

	ctx := c.UserContext()
	post := &models.Post{
		Title:    req.Title,
		Body:     req.Body,
		Tags:     req.Tags,
		PhotoURL: req.PhotoURL,
		AuthorID: userID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return respondError(c, err)
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdatePost handles PUT /postagens/:id. Only the author may edit.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return forbidden(c)
	}

	post.Title = req.Title
	post.Body = req.Body
	post.Tags = req.Tags
	post.PhotoURL = req.PhotoURL
	if err := s.postRepo.Update(ctx, post); err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /postagens/:id. Comments and likes go with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if post.AuthorID != currentUserID(c) {
		return forbidden(c)
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
