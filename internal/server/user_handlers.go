package server

import (
	"strings"

	"pingme/internal/models"

	"github.com/gofiber/fiber/v2"
)

type updateUserRequest struct {
	Name            string `json:"name"`
	Bio             string `json:"biografia"`
	ProfilePhotoURL string `json:"fotoPerfil"`
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /users/:id. Only the user may edit their profile.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != currentUserID(c) {
		return forbidden(c)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	user.Name = req.Name
	user.Bio = req.Bio
	user.ProfilePhotoURL = req.ProfilePhotoURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
