package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNothingToSave = errors.New("nothing to save: team and tactics are required")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Locals set by the owner/auth middleware.
const (
	LocalOwnerID   = "owner_id"
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
)

func ownerID(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalOwnerID).(string)
	return v
}

// userID is empty for anonymous (client-id) owners.
func userID(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalUserID).(string)
	return v
}

func userEmail(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalUserEmail).(string)
	return v
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
