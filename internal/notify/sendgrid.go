package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/logging"
	"goalkeeper/backend/internal/models"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailClient is the part of the SendGrid client the notifier uses.
type MailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier sends plain-text SOS emails through the SendGrid v3 API.
type SendGridNotifier struct {
	Client    MailClient
	FromEmail string
	Log       *slog.Logger
}

// NewSendGridNotifier returns a notifier for the given credentials. When either the
// API key or the sender address is empty, the notifier never calls the API.
func NewSendGridNotifier(apiKey, fromEmail string, log *slog.Logger) *SendGridNotifier {
	if log == nil {
		log = logging.Discard()
	}
	n := &SendGridNotifier{FromEmail: fromEmail, Log: log}
	if apiKey != "" {
		n.Client = sendgrid.NewSendClient(apiKey)
	}
	return n
}

// Enabled reports whether the notifier has both a client and a sender address.
func (n *SendGridNotifier) Enabled() bool {
	return n.Client != nil && n.FromEmail != ""
}

// SendSOS sends one email per contact. A failed recipient is logged and the
// remaining contacts are still attempted.
func (n *SendGridNotifier) SendSOS(ctx context.Context, displayName string, contacts []models.EmergencyContact) DeliveryReport {
	var report DeliveryReport
	if !n.Enabled() || len(contacts) == 0 {
		return report
	}

	from := mail.NewEmail(config.SenderName, n.FromEmail)
	subject := Subject(displayName)

	for _, c := range contacts {
		report.Attempted++

		to := mail.NewEmail(c.ContactName, c.ContactEmail)
		message := mail.NewSingleEmail(from, subject, to, Body(c.ContactName, displayName), "")

		if err := n.send(ctx, message); err != nil {
			report.Failed++
			n.logger().Error("sos email failed", "recipient", c.ContactEmail, "error", err)
			continue
		}
		report.Sent++
	}

	return report
}

func (n *SendGridNotifier) logger() *slog.Logger {
	if n.Log == nil {
		return logging.Discard()
	}
	return n.Log
}

func (n *SendGridNotifier) send(ctx context.Context, message *mail.SGMailV3) error {
	resp, err := n.Client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Subject is the alert subject line for a user.
func Subject(displayName string) string {
	return fmt.Sprintf("%s has gone silent on their goal.", displayName)
}

// Body is the plain-text alert sent to one contact.
func Body(contactName, displayName string) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"%s hasn't checked in on their goal for a while. "+
		"This is an automated SOS alert from %s.\n\n"+
		"Please consider reaching out to them.\n",
		contactName, displayName, config.SenderName)
}
