package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CreatePayment records a payment against a loan.
// Ownership of the loan must be checked by the caller in the same transaction.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	q := r.ext()
	query := q.Rebind(`
		INSERT INTO payments (loan_id, amount, payment_date)
		VALUES (?, ?, ?)
		RETURNING payment_id`)
	err := q.QueryRowxContext(ctx, query, payment.LoanID, payment.Amount, payment.PaymentDate).
		Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListPaymentAmounts returns the amounts paid against a loan
func (r *Repository) ListPaymentAmounts(ctx context.Context, loanID int64) ([]decimal.Decimal, error) {
	q := r.ext()
	query := q.Rebind(`SELECT amount FROM payments WHERE loan_id = ? ORDER BY payment_id`)

	var amounts []decimal.Decimal
	if err := sqlx.SelectContext(ctx, q, &amounts, query, loanID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return amounts, nil
}

// ListPaymentsByUser returns all payments across the user's loans, newest first
func (r *Repository) ListPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	q := r.ext()
	query := q.Rebind(`
		SELECT p.payment_id, p.loan_id, p.amount, p.payment_date
		FROM payments p
		JOIN loans l ON l.loan_id = p.loan_id
		WHERE l.user_id = ?
		ORDER BY p.payment_date DESC, p.payment_id DESC`)

	var payments []models.Payment
	if err := sqlx.SelectContext(ctx, q, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list payment history: %w", err)
	}
	for i := range payments {
		payments[i].PaymentDate = payments[i].PaymentDate.UTC()
	}
	return payments, nil
}
