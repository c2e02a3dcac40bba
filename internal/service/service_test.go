package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/auth"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := testutil.Config()
	svc := NewService(testutil.OpenRepository(t), testutil.Logger(), cfg, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))

	// A clock that advances a second per call keeps payment timestamps distinct.
	var mu sync.Mutex
	clock := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func mustRegister(t *testing.T, svc *Service, username string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), username, "pw-"+username, "Full "+username)
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	alice, err := svc.Register(ctx, "alice", "pw", "Alice A")
	require.NoError(t, err)
	require.NotZero(t, alice.ID)
	require.NotEqual(t, "pw", alice.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "alice", "pw", "Alice A")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "pw", "Alice A")
	require.ErrorIs(t, err, ErrUserExists)

	// The original secret still works, so the directory holds exactly one alice.
	_, err = svc.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "racer", "pw", "Racer")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrUserExists):
				dups++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, attempts-1, dups)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for name, args := range map[string][3]string{
		"empty username": {"  ", "pw", "Name"},
		"empty password": {"bob", "", "Name"},
		"empty name":     {"bob", "pw", " "},
		"long password":  {"bob", string(make([]byte, 73)), "Name"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, args[0], args[1], args[2])
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")

	token, user, err := svc.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)

	userID, err := svc.tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, alice.ID, userID)

	_, _, err = svc.Login(ctx, "alice", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUserStillComparesHash(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustRegister(t, svc, "alice")
	require.NotEmpty(t, svc.dummyHash)

	var compared [][]byte
	svc.compareHash = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := svc.Authenticate(ctx, "ghost", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, compared, 1)
	require.Equal(t, svc.dummyHash, compared[0])

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, compared, 2)
	require.NotEqual(t, svc.dummyHash, compared[1])
}

func TestLoanLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")

	loan, err := svc.ApplyForLoan(ctx, alice.ID, dec("1000.00"), dec("5.0"), 12)
	require.NoError(t, err)
	require.NotZero(t, loan.ID)
	require.Equal(t, models.LoanStatusActive, loan.Status)
	require.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), loan.StartDate)

	balances, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, loan.ID, balances[0].LoanID)
	require.Equal(t, "1000.00", balances[0].Principal.StringFixed(2))
	require.Equal(t, "1000.00", balances[0].Remaining.StringFixed(2))

	_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("200.00"))
	require.NoError(t, err)
	balances, err = svc.ListLoansWithBalance(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, "800.00", balances[0].Remaining.StringFixed(2))

	_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("800.00"))
	require.NoError(t, err)

	all, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Remaining.IsZero())

	outstanding, err := svc.ListLoansWithBalance(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Empty(t, outstanding)
}

func TestRecordPaymentOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")
	bob := mustRegister(t, svc, "bob")

	bobsLoan, err := svc.ApplyForLoan(ctx, bob.ID, dec("300"), dec("4.5"), 6)
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, alice.ID, bobsLoan.ID, dec("50.00"))
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.RecordPayment(ctx, alice.ID, bobsLoan.ID+1000, dec("50.00"))
	require.ErrorIs(t, err, ErrNotOwner)

	history, err := svc.PaymentHistory(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, history, "a rejected payment must not create a row")

	balances, err := svc.ListLoansWithBalance(ctx, bob.ID, false)
	require.NoError(t, err)
	require.Equal(t, "300.00", balances[0].Remaining.StringFixed(2))
}

func TestRecordPaymentValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")
	loan, err := svc.ApplyForLoan(ctx, alice.ID, dec("100"), dec("1"), 1)
	require.NoError(t, err)

	for _, amt := range []string{"0", "-5", "1.005"} {
		_, err := svc.RecordPayment(ctx, alice.ID, loan.ID, dec(amt))
		require.ErrorIs(t, err, ErrValidation, amt)
	}
}

func TestOverpayment(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed by default and goes negative", func(t *testing.T) {
		svc := newTestService(t)
		alice := mustRegister(t, svc, "alice")
		loan, err := svc.ApplyForLoan(ctx, alice.ID, dec("100"), dec("1"), 1)
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("150.25"))
		require.NoError(t, err)

		balances, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
		require.NoError(t, err)
		require.Equal(t, "-50.25", balances[0].Remaining.StringFixed(2))
	})

	t.Run("rejected when configured", func(t *testing.T) {
		svc := newTestService(t)
		svc.config.RejectOverpayment = true
		alice := mustRegister(t, svc, "alice")
		loan, err := svc.ApplyForLoan(ctx, alice.ID, dec("100"), dec("1"), 1)
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("60"))
		require.NoError(t, err)
		_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("40.01"))
		require.ErrorIs(t, err, ErrValidation)
		_, err = svc.RecordPayment(ctx, alice.ID, loan.ID, dec("40"))
		require.NoError(t, err)
	})
}

func TestApplyForLoanValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")

	cases := []struct {
		name   string
		amount string
		rate   string
		term   int
	}{
		{"zero amount", "0", "5", 12},
		{"negative rate", "100", "-1", 12},
		{"zero term", "100", "5", 0},
		{"sub-cent amount", "100.001", "5", 12},
	}
	for _, tc := range cases {
		_, err := svc.ApplyForLoan(ctx, alice.ID, dec(tc.amount), dec(tc.rate), tc.term)
		require.ErrorIs(t, err, ErrValidation, tc.name)
	}

	balances, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Empty(t, balances)
}

func TestPaymentHistoryOrderingAndIdempotence(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	alice := mustRegister(t, svc, "alice")
	bob := mustRegister(t, svc, "bob")

	l1, err := svc.ApplyForLoan(ctx, alice.ID, dec("1000"), dec("5"), 12)
	require.NoError(t, err)
	l2, err := svc.ApplyForLoan(ctx, alice.ID, dec("500"), dec("5"), 12)
	require.NoError(t, err)
	bl, err := svc.ApplyForLoan(ctx, bob.ID, dec("500"), dec("5"), 12)
	require.NoError(t, err)

	var lastID int64
	for _, p := range []struct {
		user, loan int64
	}{{alice.ID, l1.ID}, {alice.ID, l2.ID}, {bob.ID, bl.ID}, {alice.ID, l1.ID}} {
		pay, err := svc.RecordPayment(ctx, p.user, p.loan, dec("10.00"))
		require.NoError(t, err)
		if p.user == alice.ID {
			lastID = pay.ID
		}
	}

	history, err := svc.PaymentHistory(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, lastID, history[0].ID)
	for i := 1; i < len(history); i++ {
		require.False(t, history[i].PaymentDate.After(history[i-1].PaymentDate))
	}

	again, err := svc.PaymentHistory(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, history, again)

	b1, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	b2, err := svc.ListLoansWithBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
	require.Equal(t, "980.00", b1[0].Remaining.StringFixed(2))
	require.Equal(t, "490.00", b1[1].Remaining.StringFixed(2))
}
