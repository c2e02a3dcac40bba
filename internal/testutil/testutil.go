package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// OpenRepository opens an in-memory SQLite database with migrations applied.
// The database is closed when the test ends.
func OpenRepository(t *testing.T) *repository.Repository {
	t.Helper()

	db, err := repository.Open(context.Background(), config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewRepository(db)
	require.NoError(t, repo.ApplyMigrations())
	return repo
}

// Config returns a configuration suitable for tests: sqlite, cheap bcrypt.
func Config() *config.Config {
	return &config.Config{
		DBDriver:   config.DriverSQLite,
		DBConn:     ":memory:",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		CBRMargin:  5.0,
		LoginRate:  100,
		LoginBurst: 100,
	}
}

// Logger returns a logger that discards output
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
