package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "cgk_session"

// SessionTTL bounds both the server-side session and the cookie lifetime.
const SessionTTL = 24 * time.Hour

// --- Custom Service Errors ---
var (
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrSessionExpired   = errors.New("session missing or expired")
	ErrTokenGeneration  = errors.New("failed to generate session token")
)

// AuthService is the session gate: a single shared-secret login producing a
// server-side session, checked on every protected request. There is no
// per-user identity; the whole dashboard is operated by one person.
type AuthService interface {
	// Login verifies the submitted password against the system password and,
	// on success, opens a session and returns its signed cookie token.
	Login(password string) (string, error)
	// Authenticate verifies a cookie token and requires its session to still
	// be live server-side, so logout revokes even unexpired tokens.
	Authenticate(token string) error
	// Logout destroys the session behind the token. Unknown or mangled tokens
	// are ignored.
	Logout(token string)
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type authService struct {
	passwordHash  []byte
	signingSecret []byte
	sessionTTL    time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time // session id -> expiry
}

// NewAuthService creates the session gate. The system password is bcrypt-hashed
// at startup so the plain secret is not kept in process memory.
func NewAuthService(systemPassword, sessionSecret string, ttl time.Duration) (AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(systemPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash system password: %w", err)
	}
	return &authService{
		passwordHash:  hash,
		signingSecret: []byte(sessionSecret),
		sessionTTL:    ttl,
		sessions:      make(map[string]time.Time),
	}, nil
}

func (s *authService) Login(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(s.sessionTTL)

	s.mu.Lock()
	s.sessions[sessionID] = expiresAt
	s.mu.Unlock()

	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "consultancy-crm",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingSecret)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

func (s *authService) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *authService) Authenticate(token string) error {
	if token == "" {
		return ErrSessionExpired
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return ErrSessionExpired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.sessions[claims.SessionID]
	if !ok {
		return ErrSessionExpired
	}
	if time.Now().After(expiresAt) {
		delete(s.sessions, claims.SessionID)
		return ErrSessionExpired
	}
	return nil
}

func (s *authService) Logout(token string) {
	if token == "" {
		return
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.sessions, claims.SessionID)
	s.mu.Unlock()
}
