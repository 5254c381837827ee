package billing

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

func TestRecompute(t *testing.T) {
	tests := []struct {
		name       string
		due, paid  float64
		wantDue    float64
		wantPaid   float64
		wantStatus string
	}{
		{"untouched", 100, 0, 100, 0, StatusUnpaid},
		{"partial", 100, 60, 100, 60, StatusPartial},
		{"exact", 100, 100, 0, 0, StatusPaid},
		{"overpaid keeps credit", 100, 130, 0, 30, StatusPaid},
		{"nothing owed", 0, 0, 0, 0, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, paid, status := Recompute(tt.due, tt.paid)
			if due != tt.wantDue || paid != tt.wantPaid || status != tt.wantStatus {
				t.Errorf("Recompute(%v, %v) = (%v, %v, %q), want (%v, %v, %q)",
					tt.due, tt.paid, due, paid, status, tt.wantDue, tt.wantPaid, tt.wantStatus)
			}
		})
	}
}

func TestRecompute_PaidIffNoDue(t *testing.T) {
	cases := [][2]float64{{0, 0}, {50, 0}, {50, 25}, {50, 50}, {50, 80}, {0, 10}}

	for _, c := range cases {
		due, _, status := Recompute(c[0], c[1])
		if (due == 0) != (status == StatusPaid) {
			t.Errorf("Recompute(%v, %v): due=%v status=%q violates due==0 iff paid", c[0], c[1], due, status)
		}
	}
}

func TestSeedFromBalance(t *testing.T) {
	tests := []struct {
		balance    float64
		wantDue    float64
		wantPaid   float64
		wantStatus string
	}{
		{150, 150, 0, StatusUnpaid},
		{-80, 0, 80, StatusPaid},
		{0, 0, 0, StatusPaid},
	}

	for _, tt := range tests {
		due, paid, status := SeedFromBalance(tt.balance)
		if due != tt.wantDue || paid != tt.wantPaid || status != tt.wantStatus {
			t.Errorf("SeedFromBalance(%v) = (%v, %v, %q), want (%v, %v, %q)",
				tt.balance, due, paid, status, tt.wantDue, tt.wantPaid, tt.wantStatus)
		}
	}
}

func TestOutstanding(t *testing.T) {
	if got := Outstanding(100, 30); got != 70 {
		t.Errorf("Outstanding(100, 30) = %v, want 70", got)
	}
	if got := Outstanding(0, 30); got != 0 {
		t.Errorf("Outstanding(0, 30) = %v, want 0", got)
	}
}

func TestValidMethod(t *testing.T) {
	for _, method := range []string{MethodCard, MethodCheque, MethodCash, MethodTransfer, MethodPass} {
		if !ValidMethod(method) {
			t.Errorf("ValidMethod(%q) = false", method)
		}
	}
	if ValidMethod("bitcoin") {
		t.Error("ValidMethod accepted an unknown method")
	}
}

// testMember builds an in-memory member record.
func testMember(due, paid float64) *core.Record {
	col := core.NewBaseCollection("members")
	col.Fields.Add(
		&core.NumberField{Name: "total_due"},
		&core.NumberField{Name: "total_paid"},
		&core.SelectField{Name: "payment_status", Values: []string{StatusUnpaid, StatusPartial, StatusPaid}, MaxSelect: 1},
		&core.JSONField{Name: "payment_history"},
	)

	record := core.NewRecord(col)
	record.Set("total_due", due)
	record.Set("total_paid", paid)
	return record
}

func TestApplyPayment(t *testing.T) {
	member := testMember(100, 0)

	err := ApplyPayment(member, PaymentEvent{Amount: 60, Method: MethodCheque, Date: time.Now(), Status: "completed"})
	if err != nil {
		t.Fatalf("ApplyPayment returned error: %v", err)
	}

	if got := member.GetFloat("total_paid"); got != 60 {
		t.Errorf("total_paid = %v, want 60", got)
	}
	if got := member.GetString("payment_status"); got != StatusPartial {
		t.Errorf("payment_status = %q, want partial", got)
	}

	events, err := History(member)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(events) != 1 || events[0].Amount != 60 || events[0].Method != MethodCheque {
		t.Errorf("history = %+v, want one 60 cheque event", events)
	}
}

func TestApplyPayment_OverpaymentKeepsCredit(t *testing.T) {
	member := testMember(100, 0)

	if err := ApplyPayment(member, PaymentEvent{Amount: 130, Method: MethodCash, Date: time.Now(), Status: "completed"}); err != nil {
		t.Fatalf("ApplyPayment returned error: %v", err)
	}

	if due := member.GetFloat("total_due"); due != 0 {
		t.Errorf("total_due = %v, want 0", due)
	}
	if paid := member.GetFloat("total_paid"); paid != 30 {
		t.Errorf("total_paid = %v, want 30 credit", paid)
	}
	if status := member.GetString("payment_status"); status != StatusPaid {
		t.Errorf("payment_status = %q, want paid", status)
	}
}

func TestApplyPayment_RejectsNonPositiveAmount(t *testing.T) {
	member := testMember(100, 0)

	if err := ApplyPayment(member, PaymentEvent{Amount: 0}); err == nil {
		t.Error("expected error for zero amount")
	}
	if err := ApplyPayment(member, PaymentEvent{Amount: -5}); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestHasSession(t *testing.T) {
	events := []PaymentEvent{
		{Amount: 50, Method: MethodCard, SessionID: "cs_123"},
		{Amount: 20, Method: MethodCheque},
	}

	if !HasSession(events, "cs_123") {
		t.Error("HasSession missed a recorded session")
	}
	if HasSession(events, "cs_999") {
		t.Error("HasSession matched an unknown session")
	}
	if HasSession(events, "") {
		t.Error("HasSession matched an empty session ID")
	}
}

func TestApplyPayment_SessionRecordedForIdempotency(t *testing.T) {
	member := testMember(100, 0)

	ev := PaymentEvent{Amount: 50, Method: MethodCard, Date: time.Now(), Status: "completed", SessionID: "cs_abc"}
	if err := ApplyPayment(member, ev); err != nil {
		t.Fatalf("ApplyPayment returned error: %v", err)
	}

	events, err := History(member)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if !HasSession(events, "cs_abc") {
		t.Error("session ID not recorded; redelivered callbacks would double-credit")
	}
}

func TestRecomputeRecord(t *testing.T) {
	member := testMember(100, 130)

	RecomputeRecord(member)

	if member.GetFloat("total_due") != 0 || member.GetFloat("total_paid") != 30 {
		t.Errorf("ledger = due %v paid %v, want due 0 paid 30",
			member.GetFloat("total_due"), member.GetFloat("total_paid"))
	}
	if member.GetString("payment_status") != StatusPaid {
		t.Errorf("payment_status = %q, want paid", member.GetString("payment_status"))
	}
}
