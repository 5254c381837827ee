// Package billing maintains member balances: the due/paid/status ledger
// invariant, payment history, and the payment gateway integration.
package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// Payment statuses derived from (totalDue, totalPaid).
const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Recognized payment methods.
const (
	MethodCard     = "carte bancaire"
	MethodCheque   = "chèque"
	MethodCash     = "espèces"
	MethodTransfer = "virement"
	MethodPass     = "Pass Sport"
)

// ValidMethod reports whether method is one of the recognized payment methods.
func ValidMethod(method string) bool {
	switch method {
	case MethodCard, MethodCheque, MethodCash, MethodTransfer, MethodPass:
		return true
	}
	return false
}

// PaymentEvent is one immutable entry of a member's payment history.
// SessionID is set for gateway payments and keys webhook idempotency.
type PaymentEvent struct {
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	SessionID string    `json:"session_id,omitempty"`
}

// Recompute derives the ledger state from scratch. It is the single
// implementation shared by every balance-affecting path: import seeding,
// direct payments, bulk field updates and gateway webhooks.
//
// When totalPaid covers totalDue, the due amount collapses to zero and
// the excess is retained in totalPaid as credit.
func Recompute(totalDue, totalPaid float64) (due, paid float64, status string) {
	switch {
	case totalPaid >= totalDue:
		return 0, totalPaid - totalDue, StatusPaid
	case totalPaid > 0:
		return totalDue, totalPaid, StatusPartial
	default:
		return totalDue, totalPaid, StatusUnpaid
	}
}

// SeedFromBalance maps the signed balance cell of an import row to the
// initial ledger state: a positive balance is an amount owed, a negative
// balance an amount already paid.
func SeedFromBalance(balance float64) (due, paid float64, status string) {
	if balance > 0 {
		due = balance
	} else if balance < 0 {
		paid = -balance
	}
	return Recompute(due, paid)
}

// Outstanding returns the amount still owed, never negative.
func Outstanding(totalDue, totalPaid float64) float64 {
	if rest := totalDue - totalPaid; rest > 0 {
		return rest
	}
	return 0
}

// History decodes a member record's payment history.
func History(member *core.Record) ([]PaymentEvent, error) {
	raw := member.GetString("payment_history")
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var events []PaymentEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("decoding payment history: %w", err)
	}
	return events, nil
}

// HasSession reports whether a gateway session ID was already credited.
func HasSession(events []PaymentEvent, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	for _, ev := range events {
		if ev.SessionID == sessionID {
			return true
		}
	}
	return false
}

// ApplyPayment appends ev to the member's payment history, credits its
// amount and recomputes the ledger state on the record. The caller is
// responsible for per-member serialization and for saving the record.
func ApplyPayment(member *core.Record, ev PaymentEvent) error {
	if ev.Amount <= 0 {
		return fmt.Errorf("payment amount must be positive, got %v", ev.Amount)
	}

	events, err := History(member)
	if err != nil {
		return err
	}
	events = append(events, ev)

	encoded, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encoding payment history: %w", err)
	}

	due, paid, status := Recompute(
		member.GetFloat("total_due"),
		member.GetFloat("total_paid")+ev.Amount,
	)

	member.Set("payment_history", string(encoded))
	member.Set("total_due", due)
	member.Set("total_paid", paid)
	member.Set("payment_status", status)
	return nil
}

// RecomputeRecord re-derives payment_status (and the credit collapse)
// from the record's current totals. Used after field updates that touch
// total_due or total_paid without going through ApplyPayment.
func RecomputeRecord(member *core.Record) {
	due, paid, status := Recompute(
		member.GetFloat("total_due"),
		member.GetFloat("total_paid"),
	)
	member.Set("total_due", due)
	member.Set("total_paid", paid)
	member.Set("payment_status", status)
}
