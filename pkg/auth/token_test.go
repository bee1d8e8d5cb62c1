package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	sessionID, token, err := m.NewSession()
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	got, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour).Issue("sess-1")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.Issue("sess-1")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 0).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
