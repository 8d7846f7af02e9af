package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestSubject_FromSubClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "42"})

	id, err := Subject(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestSubject_FallsBackToUserID(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": 7, "token_type": "access"})

	id, err := Subject(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestSubject_MalformedToken(t *testing.T) {
	_, err := Subject("not.a.token")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestExpired(t *testing.T) {
	fresh := signToken(t, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	stale := signToken(t, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	assert.False(t, Expired(fresh, 0))
	assert.True(t, Expired(stale, 0))

	// Leeway pushes a soon-to-expire token over the line.
	soon := signToken(t, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(30 * time.Second).Unix(),
	})
	assert.False(t, Expired(soon, 0))
	assert.True(t, Expired(soon, time.Minute))
}

func TestExpired_NoExpClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "1"})
	assert.True(t, Expired(token, 0))
}
