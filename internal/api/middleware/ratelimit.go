package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
)

const (
	msgTooManyRequests    = "muitas tentativas, aguarde um momento e tente novamente"
	defaultLimiterPrefix  = "rl"
	defaultLimiterRequest = 10
)

// ErrLimiterUnavailable лимитер не смог принять решение
var ErrLimiterUnavailable = errors.New("middleware: rate limiter unavailable")

// Limiter решает, можно ли пропустить запрос с данным ключом
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает частоту запросов по IP клиента.
// При ошибке лимитера failOpen пропускает запрос, иначе отвечает 503.
// X-Forwarded-For учитывается только при trustProxy (сервис за своим балансировщиком).
func RateLimit(limiter Limiter, failOpen, trustProxy bool, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r, trustProxy)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limit: limiter error: key=%s, error=%v", key, err)
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				handlers.RespondServiceUnavailable(w)
				return
			}

			if !allowed {
				logger.Warn("rate limit: exceeded: key=%s, method=%s, path=%s", key, r.Method, r.URL.Path)
				handlers.RespondTooManyRequests(w, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RedisLimiter fixed-window лимитер в Redis, общий для всех инстансов сервиса
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	if limit <= 0 {
		limit = defaultLimiterRequest
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultLimiterPrefix
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	var count int64
	switch v := res.(type) {
	case int64:
		count = v
	case string:
		count, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	default:
		return false, fmt.Errorf("%w: unexpected script result %T", ErrLimiterUnavailable, res)
	}

	return count <= int64(l.limit), nil
}

// LocalLimiter token bucket на ключ в памяти процесса, используется без Redis.
// Ключи, не обращавшиеся дольше idleTTL, удаляются при очередном Allow.
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit <= 0 {
		limit = defaultLimiterRequest
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idleTTL:  window, // за окно ведро восстанавливается полностью
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.evictIdle(now)
		l.lastSweep = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
}

// Size количество отслеживаемых ключей
func (l *LocalLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			parts := strings.Split(ip, ",")
			if first := strings.TrimSpace(parts[0]); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
