package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"salonflow/models"
)

// sessionKeyPrefix namespaces session keys. Keys are per session instance
// (uuid), so an abandoned session cannot leak into an unrelated future one.
const sessionKeyPrefix = "schedsession:"

// SessionStore is the session durability store. It persists the in-progress
// session as JSON in Redis at every transition, so selections survive
// navigation away and back (e.g. an interrupting sign-in step).
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps a Redis client with the session keyspace and TTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Save writes the current session state, refreshing the TTL.
func (s *SessionStore) Save(ctx context.Context, session *models.SchedulingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduling session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store scheduling session: %w", err)
	}
	return nil
}

// Load reads a session back; ErrSessionNotFound when the key is absent.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*models.SchedulingSession, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduling session: %w", err)
	}
	var session models.SchedulingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse scheduling session: %w", err)
	}
	return &session, nil
}

// Clear removes every key belonging to the session. Called on successful
// submission and on explicit abandonment.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear scheduling session: %w", err)
	}
	return nil
}
