package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// anonymous is stored as the value of a session that is not yet bound
// to an account. Redis cannot hold an empty marker-less key with a
// TTL and distinguish "anonymous" from "missing" otherwise.
const anonymous = "-"

// Store keeps sessions in redis. The session identifier handed to the
// client is an opaque uuid; the server-side value is the bound account
// id. Expiry is redis-side via TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create allocates a fresh anonymous session and returns its id.
func (s *Store) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.client.Set(ctx, keyPrefix+id, anonymous, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// Bind attaches the account identity to the session, refreshing its
// TTL. A session holds at most one identity; rebinding overwrites.
func (s *Store) Bind(ctx context.Context, sessionID, userID string) error {
	if err := s.client.Set(ctx, keyPrefix+sessionID, userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to bind session: %w", err)
	}
	return nil
}

// Get returns the account id bound to the session, or "" when the
// session is anonymous, expired or unknown.
func (s *Store) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if val == anonymous {
		return "", nil
	}
	return val, nil
}

// Destroy removes the session. Destroying a session that does not
// exist is not an error.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
