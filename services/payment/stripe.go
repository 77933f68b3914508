package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tutorbook/services/hold"
	"tutorbook/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentIntentInfo is what a client needs to complete payment for a hold.
type PaymentIntentInfo struct {
	IntentID         string `json:"intentId"`
	ClientSecret     string `json:"clientSecret"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
	Currency         string `json:"currency"`
}

// PaymentEvent is a verified payment-success notification. PaymentRef is the
// processor's intent ID and becomes the finalize idempotency key.
type PaymentEvent struct {
	PaymentRef       string
	HoldID           string
	AmountMinorUnits int64
	Currency         string
}

// PaymentService creates payment intents priced from a hold's quote and
// verifies incoming webhook notifications.
type PaymentService interface {
	CreateIntentForHold(ctx context.Context, holdID string) (*PaymentIntentInfo, error)
	// ParseEvent verifies the webhook signature and extracts the payment
	// event. A nil event with a nil error means the event type is ignored.
	ParseEvent(payload []byte, sigHeader string) (*PaymentEvent, error)
}

// DefaultPaymentService implements PaymentService against Stripe. The server
// quotes the amount from the hold; client-supplied amounts are never trusted.
type DefaultPaymentService struct {
	Holds         hold.HoldService
	WebhookSecret string
}

func (svc *DefaultPaymentService) CreateIntentForHold(ctx context.Context, holdID string) (*PaymentIntentInfo, error) {
	view, err := svc.Holds.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(view.QuotedMinorUnits),
		Currency: stripe.String(strings.ToLower(view.Currency)),
	}
	params.AddMetadata("hold_id", view.ID)
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for hold %s: %w", holdID, err)
	}

	utils.GetLogger().Info("payment intent created",
		zap.String("holdID", holdID),
		zap.String("intentID", intent.ID),
		zap.Int64("amount", view.QuotedMinorUnits))
	return &PaymentIntentInfo{
		IntentID:         intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountMinorUnits: view.QuotedMinorUnits,
		Currency:         view.Currency,
	}, nil
}

func (svc *DefaultPaymentService) ParseEvent(payload []byte, sigHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, svc.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	if event.Type != "payment_intent.succeeded" {
		return nil, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent payload: %w", err)
	}
	holdID := intent.Metadata["hold_id"]
	if holdID == "" {
		return nil, errors.New("payment intent is missing hold_id metadata")
	}
	return &PaymentEvent{
		PaymentRef:       intent.ID,
		HoldID:           holdID,
		AmountMinorUnits: intent.Amount,
		Currency:         strings.ToUpper(string(intent.Currency)),
	}, nil
}
