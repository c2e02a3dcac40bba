package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"1000":      "1000.00",
		" 200.5 ":   "200.50",
		"0.01":      "0.01",
		"1e3":       "1000.00",
		"999999.99": "999999.99",
	} {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.StringFixed(2), in)
	}

	for _, in := range []string{"", "abc", "$10", "0", "-1", "0.001", "1000000000000"} {
		_, err := ParseAmount(in)
		require.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParseRate(t *testing.T) {
	t.Parallel()

	got, err := ParseRate("5.25")
	require.NoError(t, err)
	require.Equal(t, "5.25", got.String())

	for _, in := range []string{"", "five", "0", "-2", "1.00001", "100000"} {
		_, err := ParseRate(in)
		require.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParseTerm(t *testing.T) {
	t.Parallel()

	got, err := ParseTerm(" 12 ")
	require.NoError(t, err)
	require.Equal(t, 12, got)

	for _, in := range []string{"", "12.5", "0", "-3", "99999999999"} {
		_, err := ParseTerm(in)
		require.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	got, err := ParseID("17")
	require.NoError(t, err)
	require.Equal(t, int64(17), got)

	for _, in := range []string{"", "x", "0", "-1"} {
		_, err := ParseID(in)
		require.ErrorIs(t, err, ErrValidation, in)
	}
}
