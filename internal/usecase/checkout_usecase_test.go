package usecase

import (
	"context"
	"errors"
	"testing"

	"massage-booking/config"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

var testStripeConfig = config.StripeConfig{
	SuccessURL: "https://studio.example.com/success",
	CancelURL:  "https://studio.example.com/cancel",
	Currency:   "usd",
}

func TestCreateCheckoutSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	uc := NewCheckoutUsecase(testutil.Logger(), testStripeConfig, func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
	})

	got, err := uc.CreateCheckoutSession(context.Background(), &dto.CheckoutSessionRequest{Service: "swedish", Duration: 60})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", got.URL)

	require.NotNil(t, captured)
	assert.Equal(t, "payment", *captured.Mode)
	assert.Equal(t, testStripeConfig.SuccessURL, *captured.SuccessURL)
	assert.Equal(t, testStripeConfig.CancelURL, *captured.CancelURL)
	require.Len(t, captured.LineItems, 1)
	item := captured.LineItems[0]
	assert.EqualValues(t, 1, *item.Quantity)
	assert.EqualValues(t, 9000, *item.PriceData.UnitAmount)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, "swedish massage - 60 min", *item.PriceData.ProductData.Name)
}

func TestCreateCheckoutSession_InvalidSelection(t *testing.T) {
	called := false
	uc := NewCheckoutUsecase(testutil.Logger(), testStripeConfig, func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		called = true
		return &stripe.CheckoutSession{}, nil
	})

	for _, req := range []dto.CheckoutSessionRequest{
		{Service: "hotstone", Duration: 60},
		{Service: "thai", Duration: 45},
		{Service: "", Duration: 0},
	} {
		_, err := uc.CreateCheckoutSession(context.Background(), &req)
		assert.ErrorIs(t, err, ErrInvalidSelection, "%+v", req)
	}
	assert.False(t, called)
}

func TestCreateCheckoutSession_ProviderFailure(t *testing.T) {
	uc := NewCheckoutUsecase(testutil.Logger(), testStripeConfig, func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("api unavailable")
	})

	_, err := uc.CreateCheckoutSession(context.Background(), &dto.CheckoutSessionRequest{Service: "thai", Duration: 30})

	assert.ErrorIs(t, err, ErrCheckoutFailed)
}
