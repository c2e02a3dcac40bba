package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a payment recorded against a loan
type Payment struct {
	ID          int64           `json:"id" db:"payment_id"`
	LoanID      int64           `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
}
