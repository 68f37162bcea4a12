package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/utils"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/redis/go-redis/v9"
)

var errTooManyRequests = errors.New("Too many requests.")

// Limiter — фиксированное окно: не больше limit запросов на ключ за окно.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Window() time.Duration
}

// RedisLimiter хранит счётчики в redis, поэтому лимит общий для всех экземпляров API.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (l *RedisLimiter) Window() time.Duration { return l.window }

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", redisKey, err)
	}

	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}

	return n <= int64(l.limit), nil
}

// MemoryLimiter — то же окно в памяти процесса, когда redis не настроен.
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	counters map[string]*fixedWindow
	now      func() time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

// при таком числе ключей устаревшие окна удаляются
const memoryLimiterSweepSize = 4096

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		window:   window,
		counters: make(map[string]*fixedWindow),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Window() time.Duration { return l.window }

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if len(l.counters) >= memoryLimiterSweepSize {
		for k, w := range l.counters {
			if now.Sub(w.start) >= l.window {
				delete(l.counters, k)
			}
		}
	}

	w, ok := l.counters[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &fixedWindow{start: now}
		l.counters[key] = w
	}
	w.count++

	return w.count <= l.limit, nil
}

// RateLimit отвечает 429, если клиент превысил лимит. Ошибка хранилища лимит не применяет.
func RateLimit(limiter Limiter, log *slog.Logger, m *metrics.Metrics) func(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.Window().Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Error("rate limiter failed", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				m.IncRateLimited()
				w.Header().Set("Retry-After", retryAfter)
				if err := utils.Err(w, http.StatusTooManyRequests, errTooManyRequests); err != nil {
					log.Error("error sending http response", sl.Err(err))
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
