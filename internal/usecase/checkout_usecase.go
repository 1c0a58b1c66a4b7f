package usecase

import (
	"context"
	"errors"
	"fmt"

	"massage-booking/config"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrCheckoutFailed   = errors.New("failed to create checkout session")
)

// CheckoutSessionCreator creates a hosted payment page; session.New in production
type CheckoutSessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type CheckoutUsecase interface {
	CreateCheckoutSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
}

type checkoutUsecase struct {
	log           *logrus.Logger
	cfg           config.StripeConfig
	createSession CheckoutSessionCreator
}

func NewCheckoutUsecase(log *logrus.Logger, cfg config.StripeConfig, createSession CheckoutSessionCreator) CheckoutUsecase {
	return &checkoutUsecase{
		log:           log,
		cfg:           cfg,
		createSession: createSession,
	}
}

// CreateCheckoutSession prices the selection from the static table and opens a Stripe session.
// It shares no state with bookings.
func (u *checkoutUsecase) CreateCheckoutSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	amount, ok := entity.CheckoutPrice(req.Service, req.Duration)
	if !ok {
		return nil, ErrInvalidSelection
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(u.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s massage - %d min", req.Service, req.Duration)),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(u.cfg.SuccessURL),
		CancelURL:  stripe.String(u.cfg.CancelURL),
	}
	params.Context = ctx

	session, err := u.createSession(params)
	if err != nil {
		u.log.Warnf("Failed to create checkout session: %+v", err)
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	return &dto.CheckoutSessionResponse{URL: session.URL}, nil
}
