package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Wizard state lives in Redis with a TTL: it only changes which prompt
// the user sees next, so losing it on restart is acceptable.
const convStateTTL = time.Hour

func convStateKey(uid int64) string {
	return fmt.Sprintf("convstate:%d", uid)
}

func (s *Service) SetConvState(ctx context.Context, uid int64, state ConvState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, convStateKey(uid), raw, convStateTTL).Err()
}

// GetConvState returns nil when the user has no pending wizard step.
func (s *Service) GetConvState(ctx context.Context, uid int64) (*ConvState, error) {
	raw, err := s.Redis.Get(ctx, convStateKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state ConvState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Service) ClearConvState(ctx context.Context, uid int64) error {
	return s.Redis.Del(ctx, convStateKey(uid)).Err()
}
