package models

import "github.com/shopspring/decimal"

// LoanBalance represents a loan's principal and what is left to repay
type LoanBalance struct {
	LoanID    int64           `json:"loan_id"`
	Principal decimal.Decimal `json:"principal"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    LoanStatus      `json:"status"`
}

// Outstanding reports whether the loan is active and still has something to repay
func (b LoanBalance) Outstanding() bool {
	return b.Status == LoanStatusActive && b.Remaining.IsPositive()
}

// RemainingBalance returns principal minus the sum of payments.
// The result is negative when the loan has been overpaid.
func RemainingBalance(principal decimal.Decimal, payments ...decimal.Decimal) decimal.Decimal {
	remaining := principal
	for _, p := range payments {
		remaining = remaining.Sub(p)
	}
	return remaining
}

// Balance computes the balance view of a loan and its payments
func (lp LoanPayments) Balance() LoanBalance {
	return LoanBalance{
		LoanID:    lp.Loan.ID,
		Principal: lp.Loan.Amount,
		Remaining: RemainingBalance(lp.Loan.Amount, lp.Payments...),
		Status:    lp.Loan.Status,
	}
}
