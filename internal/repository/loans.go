package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const loanColumns = `l.loan_id, l.user_id, l.amount, l.interest_rate, l.term_months, l.start_date, l.status`

// CreateLoan creates a new loan in the database
func (r *Repository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	q := r.ext()
	query := q.Rebind(`
		INSERT INTO loans (user_id, amount, interest_rate, term_months, start_date, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING loan_id`)
	err := q.QueryRowxContext(ctx, query,
		loan.UserID, loan.Amount, loan.InterestRate, loan.TermMonths, loan.StartDate, loan.Status).
		Scan(&loan.ID)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// FindLoanByOwner retrieves a loan only if it belongs to userID.
// Inside a transaction on Postgres the row stays locked until commit.
func (r *Repository) FindLoanByOwner(ctx context.Context, loanID, userID int64) (*models.Loan, error) {
	q := r.ext()
	query := q.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.loan_id = ? AND l.user_id = ?` + r.forUpdate())

	loan := &models.Loan{}
	if err := sqlx.GetContext(ctx, q, loan, query, loanID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return loan, nil
}

type loanPaymentRow struct {
	models.Loan
	Paid decimal.NullDecimal `db:"paid"`
}

// ListLoansWithPayments returns every loan of userID, in creation order,
// with the amounts paid against each. A single statement is used so the
// loans and payments come from the same snapshot.
func (r *Repository) ListLoansWithPayments(ctx context.Context, userID int64) ([]models.LoanPayments, error) {
	q := r.ext()
	query := q.Rebind(`
		SELECT ` + loanColumns + `, p.amount AS paid
		FROM loans l
		LEFT JOIN payments p ON p.loan_id = l.loan_id
		WHERE l.user_id = ?
		ORDER BY l.loan_id, p.payment_id`)

	rows, err := q.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var out []models.LoanPayments
	for rows.Next() {
		var row loanPaymentRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].Loan.ID != row.Loan.ID {
			out = append(out, models.LoanPayments{Loan: row.Loan})
		}
		if row.Paid.Valid {
			last := &out[len(out)-1]
			last.Payments = append(last.Payments, row.Paid.Decimal)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return out, nil
}
