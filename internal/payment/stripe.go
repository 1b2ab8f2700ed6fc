package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"traffic-service/internal/config"
	"traffic-service/internal/model"
)

// StatusSucceeded is the only intent status that settles a violation.
const StatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// IntentRequest carries the fine in whole currency units.
type IntentRequest struct {
	ViolationID  string
	TicketNumber string
	LicensePlate string
	Amount       int64
}

// Intent mirrors the provider object; Amount is in the provider's minor unit.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Metadata     map[string]string
}

type StripeGateway struct {
	api      *client.API
	currency string
	factor   int64
	timeout  time.Duration
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	return NewStripeGatewayWithBackends(cfg, nil)
}

// NewStripeGatewayWithBackends lets callers point the client at a different API host.
func NewStripeGatewayWithBackends(cfg config.PaymentConfig, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &StripeGateway{
		api:      api,
		currency: cfg.Currency,
		factor:   cfg.MinorUnitFactor,
		timeout:  cfg.Timeout,
	}
}

func (g *StripeGateway) Channel() model.PaymentMethod {
	return model.PaymentMethodStripe
}

// MinorUnits converts a whole-unit fine into the amount Stripe charges.
func (g *StripeGateway) MinorUnits(amount int64) int64 {
	return amount * g.factor
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(g.MinorUnits(req.Amount)),
		Currency:    stripe.String(g.currency),
		Description: stripe.String("Traffic Violation - " + req.TicketNumber),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("violation_id", req.ViolationID)
	params.AddMetadata("ticket_number", req.TicketNumber)
	params.AddMetadata("license_plate", req.LicensePlate)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, describe("create payment intent", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, describe("retrieve payment intent", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Metadata:     pi.Metadata,
	}
}

func describe(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe %s: status %d type %s code %s: %w", op, stripeErr.HTTPStatusCode, stripeErr.Type, stripeErr.Code, err)
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}
