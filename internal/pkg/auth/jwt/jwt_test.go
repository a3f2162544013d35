package jwt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubSessions map[string]bool

func (s stubSessions) Active(_ context.Context, sessionID string) (bool, error) {
	if sessionID == "broken" {
		return false, errors.New("redis down")
	}
	return s[sessionID], nil
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "user-1", Name: "Asha"}, "sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.ID)
	assert.Equal(t, "Asha", payload.Name)
	assert.Equal(t, "sess-1", payload.SessionID())
	assert.Equal(t, TokenIssuer, payload.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(&Payload{ID: "user-1"}, "sess-1", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err)

	valid, err := GenerateToken(&Payload{ID: "user-1"}, "sess-1", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(valid, "other-secret")
	assert.Error(t, err)

	noSession, err := GenerateToken(&Payload{ID: "user-1"}, "", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(noSession, testSecret)
	assert.Error(t, err)
}

func TestAuthenticate_ChecksSessionRegistry(t *testing.T) {
	sessions := stubSessions{"live": true}

	live, _ := GenerateToken(&Payload{ID: "u"}, "live", testSecret, time.Hour)
	revoked, _ := GenerateToken(&Payload{ID: "u"}, "gone", testSecret, time.Hour)
	broken, _ := GenerateToken(&Payload{ID: "u"}, "broken", testSecret, time.Hour)

	_, err := Authenticate(context.Background(), live, testSecret, sessions)
	assert.NoError(t, err)

	_, err = Authenticate(context.Background(), revoked, testSecret, sessions)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = Authenticate(context.Background(), broken, testSecret, sessions)
	assert.Error(t, err)
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	sessions := stubSessions{"live": true}
	token, _ := GenerateToken(&Payload{ID: "user-9"}, "live", testSecret, time.Hour)

	var seen *Payload
	handler := IdentityExtractorMiddleware(testSecret, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	require.NotNil(t, seen)
	assert.Equal(t, "user-9", seen.ID)

	seen = nil
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Token "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Nil(t, seen)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Nil(t, seen)
}
