package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticator signs users up and in with the auth provider.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*SupabaseSession, error)
	SignIn(ctx context.Context, email, password string) (*SupabaseSession, error)
}

type AuthService struct {
	Provider Authenticator
}

func NewAuthService(provider Authenticator) *AuthService {
	return &AuthService{Provider: provider}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) SignUp(c *fiber.Ctx) error {
	return s.handle(c, "signup", s.Provider.SignUp)
}

func (s *AuthService) SignIn(c *fiber.Ctx) error {
	return s.handle(c, "signin", s.Provider.SignIn)
}

func (s *AuthService) handle(c *fiber.Ctx, action string, call func(context.Context, string, string) (*SupabaseSession, error)) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email and password are required"})
	}

	sess, err := call(c.UserContext(), req.Email, req.Password)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			log.Printf("⚠️ [AUTH] %s rejected for %s: %s", action, req.Email, perr.Message)
			return c.Status(perr.Status).JSON(fiber.Map{"error": perr.Message})
		}
		log.Printf("❌ [AUTH] %s failed for %s: %v", action, req.Email, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "authentication service unavailable"})
	}
	log.Printf("✅ [AUTH] %s ok for %s", action, req.Email)
	return c.JSON(sess)
}

// Me returns the user attached by the owner middleware.
func (s *AuthService) Me(c *fiber.Ctx) error {
	return c.JSON(SupabaseUser{ID: userID(c), Email: userEmail(c)})
}
