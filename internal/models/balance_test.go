package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRemainingBalance(t *testing.T) {
	t.Parallel()

	t.Run("no payments leaves principal", func(t *testing.T) {
		require.True(t, RemainingBalance(d("1000.00")).Equal(d("1000")))
	})

	t.Run("payments are subtracted exactly", func(t *testing.T) {
		got := RemainingBalance(d("1000.00"), d("200.10"), d("0.20"), d("0.10"))
		require.Equal(t, "799.60", got.StringFixed(2))
	})

	t.Run("overpayment goes negative", func(t *testing.T) {
		got := RemainingBalance(d("100"), d("150.50"))
		require.Equal(t, "-50.50", got.StringFixed(2))
	})
}

func TestLoanBalanceOutstanding(t *testing.T) {
	t.Parallel()

	lp := LoanPayments{
		Loan:     Loan{ID: 7, Amount: d("1000"), Status: LoanStatusActive},
		Payments: []decimal.Decimal{d("200"), d("800")},
	}
	b := lp.Balance()
	require.Equal(t, int64(7), b.LoanID)
	require.True(t, b.Remaining.IsZero())
	require.False(t, b.Outstanding())

	lp.Payments = lp.Payments[:1]
	require.True(t, lp.Balance().Outstanding())

	lp.Loan.Status = "closed"
	require.False(t, lp.Balance().Outstanding())
}
