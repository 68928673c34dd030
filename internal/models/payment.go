package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// paymentTransitions is the closed set of legal status transitions
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
}

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s PaymentStatus) bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether a payment may move to the target status
func (p *Payment) CanTransitionTo(target PaymentStatus) bool {
	for _, next := range paymentTransitions[p.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// JSONB stores an opaque JSON object in a jsonb column
type JSONB map[string]interface{}

// Value implements driver.Valuer
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return json.Unmarshal(b, j)
}

// Payment represents a tracked attempt to collect funds for a booking via
// the redirect-based eSewa gateway. One booking may accumulate several
// attempts; only one is expected to reach completed.
type Payment struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	BookingID       uuid.UUID     `json:"booking" db:"booking_id"`
	Amount          float64       `json:"amount" db:"amount"`
	TransactionID   string        `json:"transactionId" db:"transaction_id"`
	Status          PaymentStatus `json:"status" db:"status"`
	PaymentMethod   string        `json:"paymentMethod" db:"payment_method"`
	PaymentResponse JSONB         `json:"paymentResponse,omitempty" db:"payment_response"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
}

// InitiatePaymentRequest represents the request to initiate a payment
type InitiatePaymentRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}
