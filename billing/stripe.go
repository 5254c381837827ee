package billing

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
)

// CheckoutRequest describes a payment-intent to create at the gateway.
type CheckoutRequest struct {
	MemberID string
	Amount   float64 // euros
}

// GatewayEvent is the one event shape the ledger consumes from the
// gateway: a completed checkout session with its credited amount.
type GatewayEvent struct {
	SessionID string
	MemberID  string
	Amount    float64 // euros
	Completed bool
}

// Gateway is the narrow payment gateway contract used by the handlers.
// The production implementation talks to Stripe; tests substitute fakes.
type Gateway interface {
	// CreateCheckout creates a hosted payment session and returns its URL.
	CreateCheckout(req CheckoutRequest) (url string, err error)
	// VerifyEvent checks the callback signature and decodes the payload.
	// An invalid signature is an error; no payload data is returned.
	VerifyEvent(payload []byte, signature string) (*GatewayEvent, error)
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	cfg config.Stripe
}

// NewStripeGateway creates the Stripe-backed gateway.
func NewStripeGateway(cfg config.Stripe) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{cfg: cfg}
}

// CreateCheckout creates a Stripe Checkout session for a membership fee.
// The member's internal ID travels in the session metadata and comes
// back on the completion callback.
func (g *StripeGateway) CreateCheckout(req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyEUR)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Cotisation"),
				},
				UnitAmount: stripe.Int64(int64(req.Amount*100 + 0.5)),
			},
			Quantity: stripe.Int64(1),
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
	}
	params.AddMetadata("memberId", req.MemberID)

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return s.URL, nil
}

// VerifyEvent validates the webhook signature and extracts the completed
// checkout session, if any. Event types other than session completion
// return a GatewayEvent with Completed=false.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (*GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verifying webhook signature: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return &GatewayEvent{}, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}

	return &GatewayEvent{
		SessionID: cs.ID,
		MemberID:  cs.Metadata["memberId"],
		Amount:    float64(cs.AmountTotal) / 100,
		Completed: true,
	}, nil
}
