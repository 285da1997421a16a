package services_test

import (
	"testing"
	"time"

	"consultancy_crm_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T, ttl time.Duration) services.AuthService {
	t.Helper()
	gate, err := services.NewAuthService("topsecret", "test-signing-secret", ttl)
	require.NoError(t, err)
	return gate
}

func TestLogin_PasswordChecks(t *testing.T) {
	gate := newGate(t, time.Minute)

	_, err := gate.Login("")
	assert.ErrorIs(t, err, services.ErrPasswordRequired)

	_, err = gate.Login("wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidPassword)

	token, err := gate.Login("topsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthenticate_LifeCycle(t *testing.T) {
	gate := newGate(t, time.Minute)

	token, err := gate.Login("topsecret")
	require.NoError(t, err)
	require.NoError(t, gate.Authenticate(token))

	// Logout revokes the session even though the token itself is still valid.
	gate.Logout(token)
	assert.ErrorIs(t, gate.Authenticate(token), services.ErrSessionExpired)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	gate := newGate(t, time.Minute)

	assert.ErrorIs(t, gate.Authenticate(""), services.ErrSessionExpired)
	assert.ErrorIs(t, gate.Authenticate("not-a-token"), services.ErrSessionExpired)

	token, err := gate.Login("topsecret")
	require.NoError(t, err)
	assert.ErrorIs(t, gate.Authenticate(token+"x"), services.ErrSessionExpired)

	// A token signed by a different gate (different secret) is rejected.
	other, err := services.NewAuthService("topsecret", "another-secret", time.Minute)
	require.NoError(t, err)
	foreign, err := other.Login("topsecret")
	require.NoError(t, err)
	assert.ErrorIs(t, gate.Authenticate(foreign), services.ErrSessionExpired)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	gate := newGate(t, -time.Minute)

	token, err := gate.Login("topsecret")
	require.NoError(t, err)
	assert.ErrorIs(t, gate.Authenticate(token), services.ErrSessionExpired)
}

func TestLogout_IgnoresUnknownTokens(t *testing.T) {
	gate := newGate(t, time.Minute)

	// Must not panic or affect live sessions.
	gate.Logout("")
	gate.Logout("garbage")

	token, err := gate.Login("topsecret")
	require.NoError(t, err)
	gate.Logout("garbage")
	assert.NoError(t, gate.Authenticate(token))
}
