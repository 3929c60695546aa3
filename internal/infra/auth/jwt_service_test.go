package auth

import (
	"testing"
	"time"

	"splitpay/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, now time.Time) *jwtService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-secret"

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	s := svc.(*jwtService)
	s.now = func() time.Time { return now }

	return s
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
}

func TestJWTService_DefaultsToSevenDays(t *testing.T) {
	svc := newTestJWTService(t, time.Now())
	assert.Equal(t, 7*24*time.Hour, svc.ttl)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, issuedAt)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(7*24*time.Hour)))
}

func TestJWTService_ExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, issuedAt)

	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(7*24*time.Hour + time.Second) }

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	svc := newTestJWTService(t, time.Now())

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService(t, time.Now())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
