package database

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// SessionService provides business logic for anonymous sessions and their
// stored preferences.
type SessionService struct {
	repo      *Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(repo *Repository, jwtSecret string) *SessionService {
	return &SessionService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// SessionResult is the response for a session creation.
type SessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// StartSession creates a session row and issues a token for it.
func (s *SessionService) StartSession(ipAddress, userAgent string) (*SessionResult, error) {
	session := NewSession(ipAddress, userAgent)
	if err := s.repo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.GenerateSessionToken(session.ID)
	if err != nil {
		return nil, err
	}

	return &SessionResult{Session: session, Token: token}, nil
}

// ResolveSession validates a token, confirms the session still exists and
// bumps its last-seen timestamp.
func (s *SessionService) ResolveSession(tokenString string) (*Session, error) {
	sessionID, err := s.ValidateSessionToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s no longer exists", sessionID)
	}

	if err := s.repo.TouchSession(sessionID); err != nil {
		return nil, err
	}

	return session, nil
}

// GetPreferences loads stored preferences for a session.
func (s *SessionService) GetPreferences(sessionID string) (*types.Preferences, error) {
	return s.repo.GetPreferences(sessionID)
}

// UpdatePreferences merges an update into a session's stored preferences and
// returns the result. Empty fields in the request leave the stored value
// untouched.
func (s *SessionService) UpdatePreferences(sessionID string, req *types.PreferencesRequest) (*types.Preferences, error) {
	prefs, err := s.repo.GetPreferences(sessionID)
	if err != nil {
		return nil, err
	}

	if req.Theme != "" {
		prefs.Theme = req.Theme
	}
	if req.DefaultPeriod != "" {
		prefs.DefaultPeriod = req.DefaultPeriod
	}
	if req.Filters != nil {
		prefs.Filters = req.Filters
	}

	if err := s.repo.SavePreferences(sessionID, prefs); err != nil {
		return nil, err
	}

	return prefs, nil
}

// GenerateSessionToken generates a JWT token for the session
func (s *SessionService) GenerateSessionToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(s.tokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken validates a JWT token and returns the session ID
func (s *SessionService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sessionID, ok := claims["session_id"].(string)
		if !ok {
			return "", fmt.Errorf("session_id not found in token")
		}
		return sessionID, nil
	}

	return "", fmt.Errorf("invalid token")
}
