package service

import (
	"context"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/shopspring/decimal"
)

// ApplyForLoan records a new active loan for userID starting today
func (s *Service) ApplyForLoan(ctx context.Context, userID int64, amount, rate decimal.Decimal, termMonths int) (*models.Loan, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if err := validateTerm(termMonths); err != nil {
		return nil, err
	}

	y, m, d := s.now().Date()
	loan := &models.Loan{
		UserID:       userID,
		Amount:       amount,
		InterestRate: rate,
		TermMonths:   termMonths,
		StartDate:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Status:       models.LoanStatusActive,
	}
	if err := s.repo.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}

	s.log.Infof("Loan %d created for user %d: %s at %s%% over %d months",
		loan.ID, userID, amount.StringFixed(2), rate.String(), termMonths)
	return loan, nil
}

// ListLoansWithBalance returns every loan of userID with its remaining balance.
// With onlyOutstanding set, loans that are paid off or not active are left out.
func (s *Service) ListLoansWithBalance(ctx context.Context, userID int64, onlyOutstanding bool) ([]models.LoanBalance, error) {
	loans, err := s.repo.ListLoansWithPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances := make([]models.LoanBalance, 0, len(loans))
	for _, lp := range loans {
		b := lp.Balance()
		if onlyOutstanding && !b.Outstanding() {
			continue
		}
		balances = append(balances, b)
	}
	return balances, nil
}
