// Package auth issues and validates the session tokens guarding the API.
//
// A token is "timestamp:nonce:signature" where the signature is an
// HMAC-SHA256 of "timestamp:nonce" keyed with the stored password hash.
// The nonce is tracked server side with an expiry, so a token dies on
// logout or after its TTL even though the signature stays verifiable.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 8 * time.Hour

var (
	ErrBadCredentials = errors.New("invalid password")
	ErrBadToken       = errors.New("invalid or expired token")
)

type Manager struct {
	passwordHash []byte // bcrypt hash, doubles as the HMAC key
	ttl          time.Duration

	mu     sync.Mutex
	nonces map[string]time.Time // nonce -> expiry

	now func() time.Time
}

func NewManager(passwordHash string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		nonces:       make(map[string]time.Time),
		now:          time.Now,
	}
}

// Login verifies the password and mints a session token.
func (m *Manager) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	now := m.now()
	nonce := uuid.NewString()
	payload := strconv.FormatInt(now.Unix(), 10) + ":" + nonce
	token := payload + ":" + m.sign(payload)

	m.mu.Lock()
	m.nonces[nonce] = now.Add(m.ttl)
	m.mu.Unlock()

	return token, nil
}

// Validate checks a token's shape, signature and server-side session.
func (m *Manager) Validate(token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return ErrBadToken
	}
	ts, nonce, sig := parts[0], parts[1], parts[2]

	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		return ErrBadToken
	}
	want := m.sign(ts + ":" + nonce)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrBadToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.nonces[nonce]
	if !ok {
		return ErrBadToken
	}
	if m.now().After(expiry) {
		delete(m.nonces, nonce)
		return ErrBadToken
	}
	return nil
}

// Invalidate kills the session behind a token. Unknown or malformed
// tokens are a no-op: logout is idempotent.
func (m *Manager) Invalidate(token string) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return
	}
	m.mu.Lock()
	delete(m.nonces, parts[1])
	m.mu.Unlock()
}

// CleanupExpired drops dead sessions and reports how many went.
func (m *Manager) CleanupExpired() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for nonce, expiry := range m.nonces {
		if now.After(expiry) {
			delete(m.nonces, nonce)
			removed++
		}
	}
	return removed
}

// ActiveSessions reports the live session count.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nonces)
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.passwordHash)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashPassword generates the bcrypt hash to store in configuration.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
