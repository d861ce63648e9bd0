package amqp

import (
	"encoding/json"
	"time"

	"subtracker/internal/core"
)

// RenewalMessage announces one realized charge. Consumers get the full fact
// and never need to read the database: notification senders and audit logs
// work from the message alone.
type RenewalMessage struct {
	SubscriptionID string    `json:"subscription_id"`
	Name           string    `json:"name"`
	Date           string    `json:"date"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewRenewalMessage creates a renewal message for one billing record.
func NewRenewalMessage(sub core.Subscription, record core.BillingRecord) *RenewalMessage {
	return &RenewalMessage{
		SubscriptionID: sub.ID,
		Name:           sub.Name,
		Date:           record.Date.String(),
		AmountCents:    record.Amount.Cents,
		Currency:       string(sub.Currency),
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RenewalMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RenewalMessageFromJSON creates a message from JSON bytes
func RenewalMessageFromJSON(data []byte) (*RenewalMessage, error) {
	var msg RenewalMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
