package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stattact-service/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	got CheckoutRequest
	err error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (string, error) {
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return "cs_test_123", nil
}

var stripeCfg = config.StripeConfig{
	PriceProID:   "price_pro",
	PriceEliteID: "price_elite",
	SiteURL:      "https://stattact.example",
}

func checkoutRequest(body string, signedIn bool) *http.Request {
	req := httptest.NewRequest("POST", "/billing/checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signedIn {
		req.Header.Set("X-Test-User", "user-1")
		req.Header.Set("X-Test-Email", "coach@example.com")
	}
	return req
}

func TestCheckoutSession(t *testing.T) {
	fake := &fakeCheckout{}
	svc := NewBillingService(nil, fake, stripeCfg, nil)
	app := newTestApp()
	app.Post("/billing/checkout-session", svc.CreateCheckoutSession)

	resp, body := doRequest(t, app, checkoutRequest(`{"priceId":"price_pro"}`, true))
	require.Equal(t, 200, resp.StatusCode, body)
	assert.JSONEq(t, `{"sessionId":"cs_test_123"}`, body)
	assert.Equal(t, CheckoutRequest{
		PriceID:    "price_pro",
		Email:      "coach@example.com",
		SuccessURL: "https://stattact.example/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://stattact.example/subscription/canceled",
	}, fake.got)
}

func TestCheckoutSession_NotAuthenticated(t *testing.T) {
	svc := NewBillingService(nil, &fakeCheckout{}, stripeCfg, nil)
	app := newTestApp()
	app.Post("/billing/checkout-session", svc.CreateCheckoutSession)

	resp, body := doRequest(t, app, checkoutRequest(`{"priceId":"price_pro"}`, false))
	assert.Equal(t, 401, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, body)
}

func TestCheckoutSession_ProviderError(t *testing.T) {
	svc := NewBillingService(nil, &fakeCheckout{err: errors.New("No such price: 'price_x'")}, stripeCfg, nil)
	app := newTestApp()
	app.Post("/billing/checkout-session", svc.CreateCheckoutSession)

	resp, body := doRequest(t, app, checkoutRequest(`{"priceId":"price_x"}`, true))
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No such price: 'price_x'"}`, body)
}

func TestCheckoutSession_Unconfigured(t *testing.T) {
	svc := NewBillingService(nil, nil, stripeCfg, nil)
	_, err := svc.CreateSession(context.Background(), "user-1", "coach@example.com", "price_pro")
	assert.Error(t, err)
}

func TestPlans(t *testing.T) {
	svc := NewBillingService(nil, nil, stripeCfg, nil)
	plans := svc.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, "Free", plans[0].Name)
	assert.Empty(t, plans[0].PriceID)
	assert.Equal(t, "price_elite", plans[2].PriceID)
	assert.Equal(t, "Pro", svc.planFor("price_pro"))
	assert.Empty(t, svc.planFor(""))
}
