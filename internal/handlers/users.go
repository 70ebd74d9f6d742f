package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/services"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// UsersHandler handles the profile surface: webhook provisioning,
// budget, and contacts.
type UsersHandler struct {
	users   *store.UserRepo
	userSvc *services.UserService
}

func NewUsersHandler(users *store.UserRepo, userSvc *services.UserService) *UsersHandler {
	return &UsersHandler{users: users, userSvc: userSvc}
}

type createUserPayload struct {
	ClerkUserID string `json:"clerk_user_id"`
	Email       string `json:"email"`
}

// CreateUser provisions the local row for an identity (called by the
// Clerk webhook). Repeat deliveries refresh the email.
// POST /v1/internal/users
func (h *UsersHandler) CreateUser(c fiber.Ctx) error {
	var payload createUserPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	if payload.ClerkUserID == "" || payload.Email == "" {
		return utils.NewBadRequestError("clerk_user_id and email are required", nil)
	}

	user, err := h.users.Upsert(c.Context(), payload.ClerkUserID, payload.Email)
	if err != nil {
		return utils.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser returns the authenticated user's profile.
// GET /v1/user
func (h *UsersHandler) GetUser(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

type budgetPayload struct {
	Budget decimal.Decimal `json:"budget"`
}

// UpdateBudget sets the monthly budget, subject to the 7-day cooldown.
// PUT /v1/user/budget
func (h *UsersHandler) UpdateBudget(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var payload budgetPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	if err := h.userSvc.UpdateBudget(c.Context(), user, payload.Budget); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Budget updated"})
}

// AddContact appends a contact to the user's list.
// POST /v1/user/contacts
func (h *UsersHandler) AddContact(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var contact models.Contact
	if err := c.Bind().JSON(&contact); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	contacts, err := h.userSvc.AddContact(c.Context(), user, contact)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"contacts": contacts})
}

// RemoveContact deletes a contact by name.
// DELETE /v1/user/contacts/:name
func (h *UsersHandler) RemoveContact(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	name := c.Params("name")
	if name == "" {
		return utils.NewBadRequestError("contact name is required", nil)
	}

	contacts, err := h.userSvc.RemoveContact(c.Context(), user, name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contacts": contacts})
}
