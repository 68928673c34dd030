package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment attempt in pending state
func (r *PaymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, transaction_id, status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = "esewa"
	}

	err := r.db.QueryRow(
		query,
		payment.ID, payment.BookingID, payment.Amount,
		payment.TransactionID, payment.Status, payment.PaymentMethod,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(paymentID uuid.UUID) (*models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, transaction_id, status, payment_method,
		       payment_response, created_at
		FROM payments
		WHERE id = $1
	`

	return r.scanPayment(r.db.QueryRow(query, paymentID))
}

// GetByTransactionID retrieves a payment by its gateway transaction id
func (r *PaymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, transaction_id, status, payment_method,
		       payment_response, created_at
		FROM payments
		WHERE transaction_id = $1
	`

	return r.scanPayment(r.db.QueryRow(query, transactionID))
}

// CompleteIfPending moves a payment from pending to completed and attaches
// the raw gateway callback payload. The status guard makes concurrent
// verification callbacks for the same transaction complete at most once.
func (r *PaymentRepository) CompleteIfPending(paymentID uuid.UUID, response models.JSONB) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE payments SET status = 'completed', payment_response = $2
		 WHERE id = $1 AND status = 'pending'`,
		paymentID, response,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkFailed moves a payment from pending to failed
func (r *PaymentRepository) MarkFailed(paymentID uuid.UUID, response models.JSONB) error {
	result, err := r.db.Exec(
		`UPDATE payments SET status = 'failed', payment_response = $2
		 WHERE id = $1 AND status = 'pending'`,
		paymentID, response,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PaymentRepository) scanPayment(row scanner) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
		&payment.ID, &payment.BookingID, &payment.Amount, &payment.TransactionID,
		&payment.Status, &payment.PaymentMethod, &payment.PaymentResponse,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}
