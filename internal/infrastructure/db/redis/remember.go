package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rememberTTL = 30 * 24 * time.Hour

// RememberStore keeps the last identity that logged in from each device so
// the login form can be pre-filled. Key format: remember:<device_id>
type RememberStore struct {
	client *redis.Client
}

func NewRememberStore(client *redis.Client) *RememberStore {
	return &RememberStore{client: client}
}

// Remember records username as the last login for deviceID.
func (s *RememberStore) Remember(ctx context.Context, deviceID, username string) error {
	if deviceID == "" {
		return nil
	}
	return s.client.Set(ctx, s.key(deviceID), username, rememberTTL).Err()
}

// Recall returns the remembered username for deviceID, or "" when none is
// stored.
func (s *RememberStore) Recall(ctx context.Context, deviceID string) (string, error) {
	if deviceID == "" {
		return "", nil
	}
	val, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("recall identity: %w", err)
	}
	return val, nil
}

func (s *RememberStore) key(deviceID string) string {
	return fmt.Sprintf("remember:%s", deviceID)
}
