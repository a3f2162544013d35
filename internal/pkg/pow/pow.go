/*
Package pow implements the proof-of-work gate in front of demo sign-in.

Demo sessions need no credentials, so each one costs the caller a SHA-256
search: the server hands out a nonce, the client finds a counter whose
hash(nonce+counter) has the configured number of leading hex zeros, and the
verified proof is exchanged for a short-lived single-use token.
*/
package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenHeaderKey is the HTTP header carrying the proof token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is the validity period of a proof token.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is the validity period of a challenge nonce.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already-consumed nonces.
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrProofInsufficient is returned when the hash lacks the required leading zeros.
	ErrProofInsufficient = errors.New("proof does not meet difficulty requirement")
)

// Manager tracks outstanding nonces and issued proof tokens. It is safe for concurrent use.
type Manager struct {
	difficulty int

	nonceStore map[string]time.Time
	tokenStore map[string]time.Time

	mu sync.Mutex

	now func() time.Time
}

// NewManager creates a Manager with the given difficulty and starts the expiry sweeper.
// A difficulty of zero or less disables the gate.
func NewManager(difficulty int) *Manager {
	mgr := &Manager{
		difficulty: difficulty,
		nonceStore: make(map[string]time.Time),
		tokenStore: make(map[string]time.Time),
		now:        time.Now,
	}

	go mgr.cleanupExpiredEntries()

	return mgr
}

// Enabled reports whether callers must present a proof token.
func (m *Manager) Enabled() bool {
	return m.difficulty > 0
}

// Difficulty returns the number of leading hex zeros required.
func (m *Manager) Difficulty() int {
	return m.difficulty
}

// GenerateNonce issues a new challenge nonce.
func (m *Manager) GenerateNonce() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce := uuid.New().String()
	m.nonceStore[nonce] = m.now().Add(NonceExpiryDuration)
	return nonce
}

// Solve searches for a counter satisfying difficulty for nonce. It is used by
// the trailctl client and by tests.
func Solve(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for counter := 0; ; counter++ {
		c := strconv.Itoa(counter)
		if strings.HasPrefix(hashHex(nonce, c), prefix) {
			return c
		}
	}
}

func hashHex(nonce, counter string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s%s", nonce, counter)))
	return hex.EncodeToString(hash[:])
}

// ValidateProof checks counter against nonce, consumes the nonce and returns a proof token.
func (m *Manager) ValidateProof(nonce, counter string) (string, error) {
	if !strings.HasPrefix(hashHex(nonce, counter), strings.Repeat("0", m.difficulty)) {
		return "", ErrProofInsufficient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiryTime, ok := m.nonceStore[nonce]
	if !ok || m.now().After(expiryTime) {
		return "", ErrNonceInvalid
	}

	delete(m.nonceStore, nonce)

	token := uuid.New().String()
	m.tokenStore[token] = m.now().Add(ProofTokenDuration)
	return token, nil
}

// ConsumeProofToken reports whether r carries a valid proof token, in the
// X-PoW-Token header or the pow_token query parameter, and invalidates it.
func (m *Manager) ConsumeProofToken(r *http.Request) bool {
	token := r.Header.Get(TokenHeaderKey)
	if token == "" {
		token = r.URL.Query().Get("pow_token")
	}

	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiryTime, ok := m.tokenStore[token]
	if !ok {
		return false
	}
	delete(m.tokenStore, token)

	return !m.now().After(expiryTime)
}

func (m *Manager) cleanupExpiredEntries() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.sweep()
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for nonce, expiry := range m.nonceStore {
		if now.After(expiry) {
			delete(m.nonceStore, nonce)
		}
	}

	for token, expiry := range m.tokenStore {
		if now.After(expiry) {
			delete(m.tokenStore, token)
		}
	}
}
