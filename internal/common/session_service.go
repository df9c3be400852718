package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"notionflow/server/internal/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PlatformMembership represents one connected calendar platform in a session
type PlatformMembership struct {
	Platform   constants.Platform `json:"platform"`
	CalendarID string             `json:"calendar_id"`
	AutoSync   bool               `json:"auto_sync"`
	LastSyncAt *time.Time         `json:"last_sync_at,omitempty"`
}

// SessionData represents a user's session with their connected platforms
type SessionData struct {
	SessionID      string               `json:"session_id"`
	UserID         string               `json:"user_id"`
	Email          string               `json:"email"`
	ActivePlatform constants.Platform   `json:"active_platform"`
	Platforms      []PlatformMembership `json:"platforms"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

const sessionTTL = 7 * 24 * time.Hour

// SessionService manages user sessions in Redis
type SessionService struct {
	redis *redis.Client
}

// NewSessionService creates a new session service
func NewSessionService(redis *redis.Client) *SessionService {
	return &SessionService{
		redis: redis,
	}
}

// CreateSession creates a new session for a user with their connected platforms
func (s *SessionService) CreateSession(
	ctx context.Context,
	userID, email string,
	activePlatform constants.Platform,
	platforms []PlatformMembership,
) (string, error) {
	sessionID := uuid.New().String()

	now := time.Now()

	session := SessionData{
		SessionID:      sessionID,
		UserID:         userID,
		Email:          email,
		ActivePlatform: activePlatform,
		Platforms:      platforms,
		CreatedAt:      now,
		ExpiresAt:      now.Add(sessionTTL),
	}

	log.Printf("[SessionService] CreateSession: sessionID=%s, userID=%s, numPlatforms=%d",
		sessionID, userID, len(platforms))

	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("[SessionService] ERROR: Failed to marshal session: %v", err)
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.redis.Set(ctx, "session:"+sessionID, data, sessionTTL).Err()
	if err != nil {
		log.Printf("[SessionService] ERROR: Failed to store session in Redis: %v", err)
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// GetSession retrieves a session from Redis
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.New("session not found")
		}
		log.Printf("[SessionService] ERROR: Redis error getting session: %v", err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	err = json.Unmarshal([]byte(val), &session)
	if err != nil {
		log.Printf("[SessionService] ERROR: Failed to unmarshal session: %v", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// Check if expired
	if time.Now().After(session.ExpiresAt) {
		log.Printf("[SessionService] WARNING: Session expired for ID=%s", sessionID)
		s.DeleteSession(ctx, sessionID) // Clean up expired session
		return nil, errors.New("session expired")
	}

	return &session, nil
}

// DeleteSession deletes a session from Redis
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.redis.Del(ctx, "session:"+sessionID).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RefreshSession extends the session expiration
func (s *SessionService) RefreshSession(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.ExpiresAt = time.Now().Add(sessionTTL)

	return s.save(ctx, session)
}

// SwitchActivePlatform updates the active platform in a session
func (s *SessionService) SwitchActivePlatform(ctx context.Context, sessionID string, platform constants.Platform) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if !session.HasPlatform(platform) {
		return errors.New("user has no connection for this platform")
	}

	session.ActivePlatform = platform

	return s.save(ctx, session)
}

func (s *SessionService) save(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.redis.Set(ctx, "session:"+session.SessionID, data, sessionTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// GetActivePlatform returns the active platform membership
func (s *SessionData) GetActivePlatform() *PlatformMembership {
	for i, p := range s.Platforms {
		if p.Platform == s.ActivePlatform {
			return &s.Platforms[i]
		}
	}
	return nil
}

// HasPlatform checks if the user has a connection for a specific platform
func (s *SessionData) HasPlatform(platform constants.Platform) bool {
	for _, p := range s.Platforms {
		if p.Platform == platform {
			return true
		}
	}
	return false
}
