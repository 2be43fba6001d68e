package devserver

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("supersecret", time.Hour, nil)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestTokenIssuer_Claims(t *testing.T) {
	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("supersecret", time.Hour, clockwork.NewFakeClockAt(now))

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestTokenIssuer_Expired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	issuer := NewTokenIssuer("supersecret", time.Hour, clock)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("other", time.Hour, nil).Issue(7)
	require.NoError(t, err)

	_, err = NewTokenIssuer("supersecret", time.Hour, nil).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("supersecret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("supersecret", time.Hour, nil).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_BadSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("supersecret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("supersecret", time.Hour, nil).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
