package auth

import (
	"testing"
	"time"

	"accounts/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = secret
	cfg.Env.ServiceName = "accounts"

	return cfg
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig("test_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	userID := uuid.New()
	token, err := svc.IssueToken(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "accounts", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestJWTService_MissingSecret(t *testing.T) {
	_, err := NewJWTService(newTestJWTConfig(""))
	assert.Error(t, err)
}

func TestJWTService_RejectsMalformedToken(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig("secret"))
	require.NoError(t, err)

	claims, err := svc.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewJWTService(newTestJWTConfig("secret-a"))
	require.NoError(t, err)
	verifier, err := NewJWTService(newTestJWTConfig("secret-b"))
	require.NoError(t, err)

	token, err := issuer.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := &jwtService{
		secret: []byte("secret"),
		ttl:    time.Hour,
		now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}

	token, err := svc.IssueToken(uuid.New())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig("secret"))
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "accounts",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
