package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryan55254/Heritage/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionRoundTrip(t *testing.T) {
	m, err := NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	token, expiresAt, err := m.Issue(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	issuer, err := NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := NewSessionManager("another-secret-of-sufficient-length", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionExpires(t *testing.T) {
	m, err := NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)

	now := time.Now()
	m.now = func() time.Time { return now }
	token, _, err := m.Issue(uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionRejectsGarbage(t *testing.T) {
	m, err := NewSessionManager(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewSessionManagerValidation(t *testing.T) {
	_, err := NewSessionManager("short", time.Hour)
	assert.Error(t, err)
	_, err = NewSessionManager(testSecret, 0)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.NoError(t, h.Compare(hash, "supersecret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), domain.ErrInvalidCredentials)
}
