package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/api/dto"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/internal/service"
)

// UsersHandler exposes the privileged user administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	filter := repository.ProfileFilter{}
	if role := domain.Role(c.Query("role")); role != "" {
		filter.Role = &role
	}
	if baseID := strings.TrimSpace(c.Query("base_id")); baseID != "" {
		filter.BaseID = &baseID
	}
	users, err := h.users.ListUsers(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(users))
	for i := range users {
		items = append(items, profileResponse(&users[i].Profile, users[i].Email))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), actor, service.CreateUserInput{
		Email:            req.Email,
		Password:         req.Password,
		Nome:             req.Nome,
		Role:             req.Role,
		BaseID:           req.BaseID,
		EquipeID:         req.EquipeID,
		AcessoGerenteSCI: req.AcessoGerenteSCI,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": profileResponse(&user.Profile, user.Email)})
}

// Update handles PUT /admin/users.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.UserContext(), actor, service.UpdateUserInput{
		ID:               req.ID,
		Nome:             req.Nome,
		Role:             req.Role,
		BaseID:           req.BaseID,
		EquipeID:         req.EquipeID,
		Email:            req.Email,
		Password:         req.Password,
		AcessoGerenteSCI: req.AcessoGerenteSCI,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(&user.Profile, user.Email)})
}

// Delete handles DELETE /admin/users. The id travels in the body.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.DeleteUserRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if err := h.users.DeleteUser(c.UserContext(), actor, req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"success": true}})
}
