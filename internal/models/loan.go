package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state stored on a loan
type LoanStatus string

// LoanStatusActive is set when a loan is created. No code path transitions it.
const LoanStatusActive LoanStatus = "active"

// Loan represents a loan taken by a user
type Loan struct {
	ID           int64           `json:"id" db:"loan_id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermMonths   int             `json:"term_months" db:"term_months"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	Status       LoanStatus      `json:"status" db:"status"`
}

// LoanPayments is a loan together with the amounts paid against it
type LoanPayments struct {
	Loan     Loan
	Payments []decimal.Decimal
}
