package pow

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProof_IssuesSingleUseToken(t *testing.T) {
	m := NewManager(2)
	nonce := m.GenerateNonce()

	token, err := m.ValidateProof(nonce, Solve(nonce, 2))
	require.NoError(t, err)

	_, err = m.ValidateProof(nonce, Solve(nonce, 2))
	assert.ErrorIs(t, err, ErrNonceInvalid)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	r.Header.Set(TokenHeaderKey, token)
	assert.True(t, m.ConsumeProofToken(r))
	assert.False(t, m.ConsumeProofToken(r))
}

func TestValidateProof_RejectsWeakProof(t *testing.T) {
	m := NewManager(3)
	nonce := m.GenerateNonce()

	weak := "0"
	for hashHex(nonce, weak)[:3] == "000" {
		weak += "0"
	}

	_, err := m.ValidateProof(nonce, weak)
	assert.ErrorIs(t, err, ErrProofInsufficient)
}

func TestValidateProof_ExpiredNonce(t *testing.T) {
	m := NewManager(1)
	nonce := m.GenerateNonce()

	m.now = func() time.Time { return time.Now().Add(NonceExpiryDuration + time.Second) }

	_, err := m.ValidateProof(nonce, Solve(nonce, 1))
	assert.ErrorIs(t, err, ErrNonceInvalid)

	m.sweep()
	assert.Empty(t, m.nonceStore)
}

func TestConsumeProofToken_QueryParam(t *testing.T) {
	m := NewManager(1)
	nonce := m.GenerateNonce()
	token, err := m.ValidateProof(nonce, Solve(nonce, 1))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/session?pow_token="+token, nil)
	assert.True(t, m.ConsumeProofToken(r))
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewManager(0).Enabled())
	assert.True(t, NewManager(4).Enabled())
}
