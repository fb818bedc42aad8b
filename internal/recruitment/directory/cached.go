// internal/recruitment/directory/cached.go
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedStore layers a redis cache over another Store. Lookups are
// cache-aside: read redis first, fall back to the inner store, then
// write the result back with a TTL. Cache failures degrade to the
// inner store rather than failing the request.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "directory-cache"}),
	}
}

func candidateKey(candidateID string) string {
	return fmt.Sprintf("directory:candidate:%s", candidateID)
}

func requestKey(requestID string) string {
	return fmt.Sprintf("directory:request:%s", requestID)
}

func (s *CachedStore) CandidateByID(ctx context.Context, candidateID string) (*models.Candidate, error) {
	key := candidateKey(candidateID)

	if raw, err := s.client.Get(ctx, key).Result(); err == nil {
		var c models.Candidate
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return &c, nil
		}
		// Corrupt entry, drop it and fall through
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		s.logger.Warn("candidate cache read failed", map[string]interface{}{
			"candidateId": candidateID,
			"error":       err.Error(),
		})
	}

	c, err := s.inner.CandidateByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	s.writeBack(ctx, key, c)
	return c, nil
}

func (s *CachedStore) RequestByID(ctx context.Context, requestID string) (*models.RecruitmentRequest, error) {
	key := requestKey(requestID)

	if raw, err := s.client.Get(ctx, key).Result(); err == nil {
		var r models.RecruitmentRequest
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			return &r, nil
		}
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		s.logger.Warn("request cache read failed", map[string]interface{}{
			"recruitmentRequestId": requestID,
			"error":                err.Error(),
		})
	}

	r, err := s.inner.RequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.writeBack(ctx, key, r)
	return r, nil
}

// OpenRequests is not cached: the listing backs a browse page where
// staleness is more visible than on point lookups.
func (s *CachedStore) OpenRequests(ctx context.Context) ([]*models.RecruitmentRequest, error) {
	return s.inner.OpenRequests(ctx)
}

// IsActivelyEmployed is never cached. Employment state gates
// applications and must be read fresh.
func (s *CachedStore) IsActivelyEmployed(ctx context.Context, candidateID string) (bool, error) {
	return s.inner.IsActivelyEmployed(ctx, candidateID)
}

func (s *CachedStore) writeBack(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
