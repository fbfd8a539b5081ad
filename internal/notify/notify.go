// Package notify delivers SOS alerts to a user's emergency contacts.
package notify

import (
	"context"

	"goalkeeper/backend/internal/models"
)

// Notifier sends one alert per contact. Delivery failures are reported, never returned.
type Notifier interface {
	SendSOS(ctx context.Context, displayName string, contacts []models.EmergencyContact) DeliveryReport
}

// DeliveryReport counts per-recipient outcomes of one SendSOS call.
type DeliveryReport struct {
	Attempted int
	Sent      int
	Failed    int
}

// Noop is used when email delivery is not configured.
type Noop struct{}

func (Noop) SendSOS(context.Context, string, []models.EmergencyContact) DeliveryReport {
	return DeliveryReport{}
}
