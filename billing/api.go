package billing

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/notify"
)

// memberLocks serializes balance mutations per member. The ledger
// read-modify-write is not safe under concurrent writers to the same
// record.
var memberLocks sync.Map

// LockMember acquires the mutex for one member ID and returns its unlock.
func LockMember(id string) func() {
	mu, _ := memberLocks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// requireAuth wraps a handler function to require authentication.
func requireAuth(handler func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Authentication required", nil)
		}
		return handler(e)
	}
}

// RegisterRoutes registers the payment endpoints. The webhook route is
// deliberately unauthenticated; its trust comes from signature
// verification.
func RegisterRoutes(e *core.ServeEvent, app core.App, gateway Gateway, mail *notify.Service) {
	e.Router.GET("/api/club/payments/due", func(e *core.RequestEvent) error {
		return handleCheckAmountDue(e, app)
	})

	e.Router.POST("/api/club/payments/link", func(e *core.RequestEvent) error {
		return handlePaymentLink(e, app, gateway)
	})

	e.Router.POST("/api/club/payments/webhook", func(e *core.RequestEvent) error {
		return handleWebhook(e, app, gateway)
	})

	e.Router.POST("/api/club/members/{id}/payments", requireAuth(func(e *core.RequestEvent) error {
		return handleAddPayment(e, app, mail)
	}))
}

// findMemberByIdentity looks a member up by license number and email,
// the identity pair self-service payment callers know.
func findMemberByIdentity(app core.App, license, email string) (*core.Record, error) {
	return app.FindFirstRecordByFilter(
		"members",
		"license_number = {:license} && email = {:email}",
		dbx.Params{"license": license, "email": email},
	)
}

func handleCheckAmountDue(e *core.RequestEvent, app core.App) error {
	license := e.Request.URL.Query().Get("licenseNumber")
	email := e.Request.URL.Query().Get("email")
	if license == "" || email == "" {
		return apis.NewBadRequestError("licenseNumber and email are required", nil)
	}

	member, err := findMemberByIdentity(app, license, email)
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}

	amountDue := Outstanding(member.GetFloat("total_due"), member.GetFloat("total_paid"))
	return e.JSON(http.StatusOK, map[string]any{"amountDue": amountDue})
}

func handlePaymentLink(e *core.RequestEvent, app core.App, gateway Gateway) error {
	data := struct {
		LicenseNumber string  `json:"licenseNumber"`
		Email         string  `json:"email"`
		AmountToPay   float64 `json:"amountToPay"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.LicenseNumber == "" || data.Email == "" {
		return apis.NewBadRequestError("licenseNumber, email and amountToPay are required", nil)
	}
	if data.AmountToPay <= 0 {
		return apis.NewBadRequestError("Invalid amount", nil)
	}

	member, err := findMemberByIdentity(app, data.LicenseNumber, data.Email)
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}

	amountDue := Outstanding(member.GetFloat("total_due"), member.GetFloat("total_paid"))
	if data.AmountToPay > amountDue {
		return apis.NewBadRequestError(fmt.Sprintf("Amount too high. Maximum: %.2f €", amountDue), nil)
	}

	url, err := gateway.CreateCheckout(CheckoutRequest{
		MemberID: member.Id,
		Amount:   data.AmountToPay,
	})
	if err != nil {
		slog.Error("Failed to create checkout session", "member", member.Id, "error", err)
		return apis.NewInternalServerError("Payment gateway error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"amountDue": amountDue, "url": url})
}

func handleWebhook(e *core.RequestEvent, app core.App, gateway Gateway) error {
	payload, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Unreadable payload", err)
	}

	event, err := gateway.VerifyEvent(payload, e.Request.Header.Get("Stripe-Signature"))
	if err != nil {
		// Hard rejection: an unverifiable callback mutates nothing.
		slog.Warn("Rejected gateway callback", "error", err)
		return apis.NewBadRequestError("Webhook signature verification failed", nil)
	}

	if !event.Completed {
		return e.JSON(http.StatusOK, map[string]any{"received": true})
	}

	if err := CreditGatewayPayment(app, event); err != nil {
		if IsNotFound(err) {
			return apis.NewNotFoundError("Member not found", err)
		}
		slog.Error("Failed to credit gateway payment", "session", event.SessionID, "error", err)
		return apis.NewInternalServerError("Payment update failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"received": true})
}

// notFoundError marks a missing member on the webhook path.
type notFoundError struct{ err error }

func (e *notFoundError) Error() string { return e.err.Error() }
func (e *notFoundError) Unwrap() error { return e.err }

// IsNotFound reports whether err marks a missing member.
func IsNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// CreditGatewayPayment applies one completed checkout session to its
// member. Redelivered callbacks for an already-credited session are a
// no-op: the session ID is recorded within the payment history.
func CreditGatewayPayment(app core.App, event *GatewayEvent) error {
	unlock := LockMember(event.MemberID)
	defer unlock()

	member, err := app.FindRecordById("members", event.MemberID)
	if err != nil {
		return &notFoundError{fmt.Errorf("member %s: %w", event.MemberID, err)}
	}

	events, err := History(member)
	if err != nil {
		return err
	}
	if HasSession(events, event.SessionID) {
		slog.Info("Ignoring redelivered gateway callback", "session", event.SessionID, "member", event.MemberID)
		return nil
	}

	if err := ApplyPayment(member, PaymentEvent{
		Amount:    event.Amount,
		Method:    MethodCard,
		Date:      time.Now(),
		Status:    "completed",
		SessionID: event.SessionID,
	}); err != nil {
		return err
	}

	if err := app.Save(member); err != nil {
		return fmt.Errorf("saving member %s: %w", event.MemberID, err)
	}

	slog.Info("Gateway payment credited", "member", event.MemberID, "amount", event.Amount, "session", event.SessionID)
	return nil
}

func handleAddPayment(e *core.RequestEvent, app core.App, mail *notify.Service) error {
	id := e.Request.PathValue("id")

	data := struct {
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"paymentMethod"`
	}{}
	if err := e.BindBody(&data); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if data.Amount <= 0 {
		return apis.NewBadRequestError("amount must be a positive number", nil)
	}
	if !ValidMethod(data.PaymentMethod) {
		return apis.NewBadRequestError("Invalid payment method", nil)
	}

	unlock := LockMember(id)
	defer unlock()

	member, err := app.FindRecordById("members", id)
	if err != nil {
		return apis.NewNotFoundError("Member not found", err)
	}

	ev := PaymentEvent{
		Amount: data.Amount,
		Method: data.PaymentMethod,
		Date:   time.Now(),
		Status: "completed",
	}
	if err := ApplyPayment(member, ev); err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}
	if err := app.Save(member); err != nil {
		return apis.NewInternalServerError("Saving payment failed", err)
	}

	// Confirmation delivery never blocks or fails the payment itself.
	if err := mail.SendPaymentConfirmation(member, ev.Amount, ev.Method); err != nil {
		slog.Error("Failed to send payment confirmation", "member", member.Id, "error", err)
	}

	return e.JSON(http.StatusOK, member)
}
