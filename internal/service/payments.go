package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RecordPayment records a payment against one of the user's loans.
// The ownership check and the insert run in the same transaction, so a
// payment is never written for a loan the user does not own.
func (s *Service) RecordPayment(ctx context.Context, userID, loanID int64, amount decimal.Decimal) (*models.Payment, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		LoanID:      loanID,
		Amount:      amount,
		PaymentDate: s.now(),
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		loan, err := tx.FindLoanByOwner(ctx, loanID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}

		if s.config.RejectOverpayment {
			paid, err := tx.ListPaymentAmounts(ctx, loan.ID)
			if err != nil {
				return err
			}
			remaining := models.RemainingBalance(loan.Amount, paid...)
			if amount.GreaterThan(remaining) {
				return fmt.Errorf("%w: payment %s exceeds remaining balance %s",
					ErrValidation, amount.StringFixed(2), remaining.StringFixed(2))
			}
		}

		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			s.log.WithFields(logrus.Fields{"user_id": userID, "loan_id": loanID}).
				Warn("Payment rejected: loan not owned by user")
		}
		return nil, err
	}

	s.log.Infof("Payment %d of %s recorded for loan %d by user %d",
		payment.ID, amount.StringFixed(2), loanID, userID)
	return payment, nil
}

// PaymentHistory returns all payments on the user's loans, newest first
func (s *Service) PaymentHistory(ctx context.Context, userID int64) ([]models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userID)
}
