package authsdk

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	issuer := Issuer{Secret: testSecret, TTL: time.Hour}

	token, issued, err := issuer.Issue(42, "alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, issued.TokenID, user.TokenID)
	assert.NotEmpty(t, user.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), user.ExpiresAt, 5*time.Second)
	assert.False(t, user.IsAdmin())
}

func TestParseToken_Errors(t *testing.T) {
	issuer := Issuer{Secret: testSecret, TTL: time.Hour}
	token, _, err := issuer.Issue(1, "bob", RoleAdmin)
	require.NoError(t, err)

	expired, _, err := Issuer{Secret: testSecret, TTL: -time.Minute}.Issue(1, "bob", "user")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"empty token", "", testSecret, ErrNoToken},
		{"wrong secret", token, "other", ErrInvalidToken},
		{"garbage", "not-a-jwt", testSecret, ErrInvalidToken},
		{"expired", expired, testSecret, ErrExpiredToken},
		{"none algorithm", none, testSecret, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserContext_IsAdmin(t *testing.T) {
	var nilUser *UserContext
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&UserContext{Role: RoleAdmin}).IsAdmin())
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("cookie wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")

		token, err := TokenFromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", token)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")

		token, err := TokenFromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "from-header", token)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Token abc")

		_, err := TokenFromRequest(r)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)

		_, err := TokenFromRequest(r)
		assert.ErrorIs(t, err, ErrNoToken)
	})
}
