package notify

import (
	"strings"
	"testing"
)

func TestReminderBody(t *testing.T) {
	body := ReminderBody("Jean", "Dupont", 45.5)

	if !strings.Contains(body, "Jean Dupont") {
		t.Errorf("body missing recipient name: %q", body)
	}
	if !strings.Contains(body, "45.50 €") {
		t.Errorf("body missing amount due: %q", body)
	}
}

func TestPaymentConfirmationBody(t *testing.T) {
	body := PaymentConfirmationBody("Marie", "Martin", 100, "chèque", 20)

	for _, want := range []string{"Marie Martin", "100.00 €", "chèque", "20.00 €"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %q", want, body)
		}
	}
}

func TestSalaryConfirmationBody(t *testing.T) {
	body := SalaryConfirmationBody("Paul", "Durand", 1500)

	if !strings.Contains(body, "Paul Durand") {
		t.Errorf("body missing recipient name: %q", body)
	}
	if !strings.Contains(body, "1500.00 €") {
		t.Errorf("body missing amount: %q", body)
	}
}
