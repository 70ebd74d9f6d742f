package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

const dateLayout = "2006-01-02"

// currentUser resolves the authenticated Clerk subject set by the auth
// middleware into the local user row. Every protected handler starts
// here; all queries are scoped by the resulting id.
func currentUser(c fiber.Ctx, users *store.UserRepo) (models.User, error) {
	clerkUserID, ok := c.Locals("clerk_user_id").(string)
	if !ok || clerkUserID == "" {
		return models.User{}, utils.NewUnauthorizedError("user not authenticated")
	}
	user, err := users.GetByClerkID(c.Context(), clerkUserID)
	if err != nil {
		return models.User{}, utils.NewNotFoundError("User")
	}
	return user, nil
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, utils.NewBadRequestError("invalid "+name+" date, expected YYYY-MM-DD", nil)
	}
	return t, nil
}
