package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/ratelimit"
)

// Service sends transactional club emails through the app's configured
// SMTP settings.
type Service struct {
	app     core.App
	limiter *ratelimit.Limiter
}

// NewService creates a mail service. Bulk sends are paced so a reminder
// wave does not trip the SMTP relay's throughput limits.
func NewService(app core.App) *Service {
	cfg := ratelimit.DefaultConfig()
	cfg.Delay = 500 * time.Millisecond
	return &Service{
		app:     app,
		limiter: ratelimit.New(cfg),
	}
}

func (s *Service) send(to, subject, body string) error {
	settings := s.app.Settings()
	msg := mailer.Message{
		From: mail.Address{
			Name:    settings.Meta.SenderName,
			Address: settings.Meta.SenderAddress,
		},
		To:      []mail.Address{{Address: to}},
		Subject: subject,
		Text:    body,
	}
	return s.app.NewMailClient().Send(&msg)
}

// SendPaymentReminder emails one member the amount still owed.
func (s *Service) SendPaymentReminder(member *core.Record, amountDue float64) error {
	body := ReminderBody(member.GetString("first_name"), member.GetString("last_name"), amountDue)
	return s.send(member.GetString("email"), "Rappel de paiement - Cotisation", body)
}

// SendPaymentConfirmation emails a receipt for one recorded payment.
func (s *Service) SendPaymentConfirmation(member *core.Record, amount float64, method string) error {
	body := PaymentConfirmationBody(
		member.GetString("first_name"),
		member.GetString("last_name"),
		amount,
		method,
		member.GetFloat("total_due"),
	)
	return s.send(member.GetString("email"), "Confirmation de paiement", body)
}

// SendSalaryConfirmation emails an employee their recorded salary payment.
func (s *Service) SendSalaryConfirmation(employee *core.Record, amount float64) error {
	body := SalaryConfirmationBody(
		employee.GetString("first_name"),
		employee.GetString("last_name"),
		amount,
	)
	return s.send(employee.GetString("email"), "Confirmation de versement de salaire", body)
}

// FailedDelivery records one reminder that could not be sent.
type FailedDelivery struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a reminder wave.
type BulkResult struct {
	Success []string         `json:"success"`
	Failed  []FailedDelivery `json:"failed"`
}

// SendBulkReminders mails every given member a payment reminder.
// Individual failures are collected, never propagated: one bad address
// must not stop the rest of the wave.
func (s *Service) SendBulkReminders(members []*core.Record) *BulkResult {
	result := &BulkResult{
		Success: []string{},
		Failed:  []FailedDelivery{},
	}

	ctx := context.Background()
	for _, member := range members {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		email := member.GetString("email")
		amountDue := member.GetFloat("total_due") - member.GetFloat("total_paid")
		if amountDue < 0 {
			amountDue = 0
		}

		if err := s.SendPaymentReminder(member, amountDue); err != nil {
			slog.Error("Reminder delivery failed", "email", email, "error", err)
			result.Failed = append(result.Failed, FailedDelivery{Email: email, Reason: err.Error()})
			continue
		}
		result.Success = append(result.Success, email)
	}

	slog.Info("Reminder wave finished", "sent", len(result.Success), "failed", len(result.Failed))
	return result
}

// ReminderBody builds the payment reminder text.
func ReminderBody(firstName, lastName string, amountDue float64) string {
	return fmt.Sprintf(`Bonjour %s %s,

Nous vous rappelons qu'il vous reste un montant de %.2f € à régler pour votre cotisation.

Merci de procéder au paiement dans les meilleurs délais.

Sportivement,
Le club`, firstName, lastName, amountDue)
}

// PaymentConfirmationBody builds the payment receipt text.
func PaymentConfirmationBody(firstName, lastName string, amount float64, method string, remaining float64) string {
	return fmt.Sprintf(`Bonjour %s %s,

Nous confirmons la réception de votre paiement de %.2f € (%s).

Montant restant dû : %.2f €

Merci de votre confiance.

Sportivement,
Le club`, firstName, lastName, amount, method, remaining)
}

// SalaryConfirmationBody builds the salary payment notice text.
func SalaryConfirmationBody(firstName, lastName string, amount float64) string {
	return fmt.Sprintf(`Bonjour %s %s,

Votre salaire d'un montant de %.2f € vient d'être versé.

Cordialement,
Le club`, firstName, lastName, amount)
}
