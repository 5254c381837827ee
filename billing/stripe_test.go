package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
)

const testWebhookSecret = "whsec_test"

// signPayload builds a valid Stripe-Signature header for a payload.
func signPayload(t *testing.T, payload []byte) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)
}

func testGateway() *StripeGateway {
	return NewStripeGateway(config.Stripe{WebhookSecret: testWebhookSecret})
}

func TestVerifyEvent_CompletedSession(t *testing.T) {
	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"amount_total": 15050,
				"metadata": {"memberId": "abc123"}
			}
		}
	}`)

	event, err := testGateway().VerifyEvent(payload, signPayload(t, payload))
	if err != nil {
		t.Fatalf("VerifyEvent returned error: %v", err)
	}

	if !event.Completed {
		t.Fatal("event not marked completed")
	}
	if event.SessionID != "cs_test_123" {
		t.Errorf("session = %q, want cs_test_123", event.SessionID)
	}
	if event.MemberID != "abc123" {
		t.Errorf("member = %q, want abc123", event.MemberID)
	}
	if event.Amount != 150.50 {
		t.Errorf("amount = %v, want 150.50 euros", event.Amount)
	}
}

func TestVerifyEvent_OtherEventTypesIgnored(t *testing.T) {
	payload := []byte(`{"type": "payment_intent.created", "data": {"object": {}}}`)

	event, err := testGateway().VerifyEvent(payload, signPayload(t, payload))
	if err != nil {
		t.Fatalf("VerifyEvent returned error: %v", err)
	}
	if event.Completed {
		t.Error("unrelated event type marked completed")
	}
}

func TestVerifyEvent_InvalidSignatureRejected(t *testing.T) {
	payload := []byte(`{"type": "checkout.session.completed", "data": {"object": {"id": "cs_1"}}}`)

	if _, err := testGateway().VerifyEvent(payload, "t=0,v1=deadbeef"); err == nil {
		t.Error("expected error for invalid signature")
	}

	tampered := append([]byte{}, payload...)
	sig := signPayload(t, payload)
	tampered[len(tampered)-2] = ' '
	if _, err := testGateway().VerifyEvent(tampered, sig); err == nil {
		t.Error("expected error for tampered payload")
	}
}
