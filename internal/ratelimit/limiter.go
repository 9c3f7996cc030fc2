package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("recovery limiter: redis unavailable")

// RecoveryLimiter считает последовательные неудачные попытки проверки
// контрольных вопросов. Счетчик живет в redis, а не в памяти процесса,
// поэтому лимит переживает рестарты и действует на все инстансы сервиса.
type RecoveryLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRecoveryLimiter(redisClient *redis.Client, maxAttempts int, window time.Duration) *RecoveryLimiter {
	return &RecoveryLimiter{
		redis:       redisClient,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allowed сообщает, не превышен ли порог попыток для аккаунта
func (l *RecoveryLimiter) Allowed(ctx context.Context, username string) (bool, error) {
	count, err := l.redis.Get(ctx, attemptKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return count < int64(l.maxAttempts), nil
}

// RecordFailure инкрементирует счетчик; TTL окна ставится на первой неудаче
func (l *RecoveryLimiter) RecordFailure(ctx context.Context, username string) error {
	key := attemptKey(username)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

// Reset сбрасывает счетчик после успешной проверки
func (l *RecoveryLimiter) Reset(ctx context.Context, username string) error {
	if err := l.redis.Del(ctx, attemptKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func attemptKey(username string) string {
	return "recovery:attempts:" + strings.ToLower(strings.TrimSpace(username))
}
