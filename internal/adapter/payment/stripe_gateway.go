package payment

import (
	"context"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway translates lifecycle intents into Stripe API calls. Errors
// from Stripe pass through untranslated; the lifecycle decides what to hide
// from its callers.
type StripeGateway struct {
	sc       *client.API
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, currency: currency}
}

// newStripeGatewayWithClient lets tests point the adapter at a stub backend.
func newStripeGatewayWithClient(sc *client.API, currency string) *StripeGateway {
	return &StripeGateway{sc: sc, currency: currency}
}

var _ usecase.PaymentGateway = (*StripeGateway)(nil)

func (g *StripeGateway) CreateIntent(ctx context.Context, o *domain.Order) (*usecase.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(domain.MinorUnits(o.TotalAmount)),
		Currency: stripe.String(g.currency),
		Shipping: &stripe.ShippingDetailsParams{
			Name: stripe.String("Customer"),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(o.ShippingAddress.Street),
				City:       stripe.String(o.ShippingAddress.City),
				State:      stripe.String(o.ShippingAddress.State),
				PostalCode: stripe.String(o.ShippingAddress.ZipCode),
				Country:    stripe.String(o.ShippingAddress.Country),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", o.ID)
	params.AddMetadata("userId", o.UserID)

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return intentOf(pi), nil
}

func (g *StripeGateway) GetIntentStatus(ctx context.Context, intentID string) (*usecase.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, err
	}
	return intentOf(pi), nil
}

func (g *StripeGateway) ConfirmIntent(ctx context.Context, intentID string) (*usecase.PaymentIntent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, err
	}
	return intentOf(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amountMinor *int64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	if amountMinor != nil {
		params.Amount = stripe.Int64(*amountMinor)
	}

	ref, err := g.sc.Refunds.New(params)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func intentOf(pi *stripe.PaymentIntent) *usecase.PaymentIntent {
	return &usecase.PaymentIntent{ID: pi.ID, Status: string(pi.Status)}
}
