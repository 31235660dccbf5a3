package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	token, err := Issue("s3cret", "user-1", "Alice", time.Hour)
	require.NoError(t, err)

	claims, err := Validate("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
}

func TestValidateRejects(t *testing.T) {
	good, err := Issue("s3cret", "user-1", "", 0)
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"garbage", "s3cret", "not-a-token"},
		{"alg none", "s3cret", none},
		{"empty", "s3cret", ""},
		{"expired", "s3cret", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	_, err := Issue("", "user-1", "", time.Hour)
	assert.Error(t, err)
}
