package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Column limits: numeric(14,2) for money, numeric(9,4) for rates.
	maxAmount = decimal.New(1, 12)
	maxRate   = decimal.New(1, 5)
)

// ParseAmount parses a money amount typed by a user
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrValidation, s)
	}
	return d, validateAmount(d)
}

// ParseRate parses an interest rate percentage typed by a user
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: interest rate %q is not a number", ErrValidation, s)
	}
	return d, validateRate(d)
}

// ParseTerm parses a loan term in months
func ParseTerm(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: term %q is not a whole number", ErrValidation, s)
	}
	return int(n), validateTerm(int(n))
}

// ParseID parses a loan or payment identifier
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: id %q is not a positive whole number", ErrValidation, s)
	}
	return n, nil
}

func validateAmount(d decimal.Decimal) error {
	switch {
	case !d.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	case !d.Equal(d.Truncate(2)):
		return fmt.Errorf("%w: amount must have at most 2 decimal places", ErrValidation)
	case !d.LessThan(maxAmount):
		return fmt.Errorf("%w: amount is too large", ErrValidation)
	}
	return nil
}

func validateRate(d decimal.Decimal) error {
	switch {
	case !d.IsPositive():
		return fmt.Errorf("%w: interest rate must be positive", ErrValidation)
	case !d.Equal(d.Truncate(4)):
		return fmt.Errorf("%w: interest rate must have at most 4 decimal places", ErrValidation)
	case !d.LessThan(maxRate):
		return fmt.Errorf("%w: interest rate is too large", ErrValidation)
	}
	return nil
}

func validateTerm(months int) error {
	if months <= 0 {
		return fmt.Errorf("%w: term must be a positive number of months", ErrValidation)
	}
	return nil
}
