package grpc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/xnova-go/internal/application/common"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PlayerRateLimiter throttles requests per player with a token bucket each
type PlayerRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewPlayerRateLimiter allows rps sustained requests per player with the given burst
func NewPlayerRateLimiter(rps float64, burst int, idleTTL time.Duration) *PlayerRateLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &PlayerRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Allow consumes a token for playerID
func (l *PlayerRateLimiter) Allow(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	entry, ok := l.limiters[playerID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[playerID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// prune drops limiters idle for longer than idleTTL, at most once per idleTTL
func (l *PlayerRateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.idleTTL {
		return
	}
	l.lastPrune = now
	for id, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, id)
		}
	}
}

// Len returns the number of tracked players
func (l *PlayerRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// UnaryInterceptor rejects requests over the player's budget with
// ResourceExhausted. Requests without a player_id are not throttled.
func (l *PlayerRateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		in, ok := req.(*structpb.Struct)
		if !ok {
			return handler(ctx, req)
		}
		raw := stringField(in, "player_id")
		if raw == "" {
			return handler(ctx, req)
		}
		key := raw
		if id, err := common.ResolvePlayerID(raw); err == nil {
			key = id.Value()
		}
		if !l.Allow(key) {
			return nil, status.Errorf(codes.ResourceExhausted, "too many requests for player %s", key)
		}
		return handler(ctx, req)
	}
}

// timeoutInterceptor bounds every request, including the wait for the
// player's exclusive section
func timeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if timeout <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}
