package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"stattact-service/config"
	"stattact-service/models"
	"stattact-service/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"gorm.io/gorm"
)

// CheckoutRequest is what a hosted checkout page is created from.
type CheckoutRequest struct {
	PriceID    string
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutCreator opens a hosted subscription checkout and returns its id.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
}

// StripeCheckout creates Stripe Checkout sessions.
type StripeCheckout struct {
	API *client.API
}

func NewStripeCheckout(secretKey string) *StripeCheckout {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeCheckout{API: sc}
}

func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := s.API.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return "", errors.New(stripeErr.Msg)
		}
		return "", err
	}
	return sess.ID, nil
}

// Plan is one subscription tier.
type Plan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	PriceID  string   `json:"priceId,omitempty"`
	Features []string `json:"features"`
}

type BillingService struct {
	DB       *gorm.DB // optional: records sessions when set
	Checkout CheckoutCreator
	Config   config.StripeConfig
	Metrics  *observability.Metrics
}

func NewBillingService(db *gorm.DB, checkout CheckoutCreator, cfg config.StripeConfig, metrics *observability.Metrics) *BillingService {
	return &BillingService{DB: db, Checkout: checkout, Config: cfg, Metrics: metrics}
}

func (s *BillingService) Plans() []Plan {
	return []Plan{
		{Name: "Free", Price: "$0", Features: []string{"Basic formation analysis", "Limited simulations (3/day)", "Standard formations only"}},
		{Name: "Pro", Price: "$9.99/month", PriceID: s.Config.PriceProID, Features: []string{"Advanced tactical analysis", "Unlimited simulations", "All formations", "Tournament mode"}},
		{Name: "Elite", Price: "$19.99/month", PriceID: s.Config.PriceEliteID, Features: []string{"Everything in Pro", "Real-time soccer data", "Professional insights", "API access"}},
	}
}

func (s *BillingService) planFor(priceID string) string {
	for _, p := range s.Plans() {
		if p.PriceID != "" && p.PriceID == priceID {
			return p.Name
		}
	}
	return ""
}

// CreateSession opens a checkout for the signed-in user and records it.
func (s *BillingService) CreateSession(ctx context.Context, userID, email, priceID string) (string, error) {
	if priceID == "" {
		return "", fmt.Errorf("priceId is required: %w", ErrInvalidInput)
	}
	if s.Checkout == nil {
		return "", errors.New("billing is not configured")
	}
	id, err := s.Checkout.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    priceID,
		Email:      email,
		SuccessURL: s.Config.SiteURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.Config.SiteURL + "/subscription/canceled",
	})
	if err != nil {
		s.Metrics.CheckoutSession("error")
		return "", err
	}
	s.Metrics.CheckoutSession("created")

	if s.DB != nil {
		rec := models.CheckoutSession{
			ID:             id,
			ExternalUserID: userID,
			Email:          email,
			PriceID:        priceID,
			Plan:           s.planFor(priceID),
		}
		if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
			log.Printf("⚠️ [BILLING] Failed to record checkout session %s: %v", id, err)
		}
	}
	return id, nil
}

func (s *BillingService) GetPlans(c *fiber.Ctx) error {
	return c.JSON(s.Plans())
}

// CreateCheckoutSession answers POST /billing/checkout-session.
func (s *BillingService) CreateCheckoutSession(c *fiber.Ctx) error {
	uid, email := userID(c), userEmail(c)
	if uid == "" || email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var body struct {
		PriceID string `json:"priceId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	id, err := s.CreateSession(c.UserContext(), uid, email, body.PriceID)
	if errors.Is(err, ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		log.Printf("❌ [BILLING] Checkout session for %s failed: %v", uid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("✅ [BILLING] Checkout session %s created for %s", id, uid)
	return c.JSON(fiber.Map{"sessionId": id})
}
