package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist or its TTL expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the narrow key-value contract the exam core depends on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Key builders. The exam session lives under two keys: the full session blob
// and a bare start-time used for server-side elapsed-time verification.

func ExamProgressKey(examID, studentID uint) string {
	return fmt.Sprintf("exam:%d:%d:progress", examID, studentID)
}

func ExamStartTimeKey(examID, studentID uint) string {
	return fmt.Sprintf("exam:%d:%d:startTime", examID, studentID)
}

func LeaderboardGlobalKey() string {
	return "leaderboard:global"
}

func LeaderboardCourseKey(courseID uint) string {
	return fmt.Sprintf("leaderboard:course:%d", courseID)
}
