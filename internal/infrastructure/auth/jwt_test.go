package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService("test-secret", 15, 7)
}

func TestGenerateAndVerify(t *testing.T) {
	svc := newTestService()

	pair, err := svc.Generate(42, "USER")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ProfileID)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	pair, err := newTestService().Generate(1, "USER")
	require.NoError(t, err)

	other := NewJWTService("different-secret", 15, 7)
	_, err = other.Verify(pair.AccessToken)
	assert.Error(t, err)
}

func TestRefreshRotatesPair(t *testing.T) {
	svc := newTestService()

	pair, err := svc.Generate(7, "ADMIN")
	require.NoError(t, err)

	rotated, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Verify(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ProfileID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestService()

	pair, err := svc.Generate(7, "USER")
	require.NoError(t, err)

	_, err = svc.Refresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptPasswordHasher(4)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	assert.NoError(t, hasher.Verify("s3cret", hash))
	assert.Error(t, hasher.Verify("wrong", hash))
}
