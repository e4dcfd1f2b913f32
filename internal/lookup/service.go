package lookup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/cache"
	"github.com/Ken-Miles/farm-computer/internal/metrics"
	"github.com/Ken-Miles/farm-computer/internal/storage/models"
	"github.com/Ken-Miles/farm-computer/internal/storage/sqlite"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

// Service runs one query through the whole pipeline: resolve, consult the
// cache, extract on miss, record the lookup. Both the Discord command and
// the HTTP API go through here.
type Service struct {
	resolver *wiki.Resolver
	cache    *cache.Cache
	baseURL  string
	db       *sqlite.Client
}

// Result pairs the summary with how it was produced.
type Result struct {
	Summary  *wiki.Summary
	Outcome  string
	CacheHit bool
	Latency  time.Duration
}

func NewService(resolver *wiki.Resolver, c *cache.Cache, baseURL string, db *sqlite.Client) *Service {
	return &Service{
		resolver: resolver,
		cache:    c,
		baseURL:  baseURL,
		db:       db,
	}
}

// Lookup resolves a query to a summary. NotFound yields the fixed help
// summary and a nil error; only extraction failures return an error.
func (s *Service) Lookup(ctx context.Context, query, userID string) (*Result, error) {
	start := time.Now()
	lookupID := uuid.New().String()

	res := s.resolver.Resolve(ctx, query)
	metrics.ResolutionTotal.WithLabelValues(res.Kind.String()).Inc()

	result := &Result{Outcome: res.Kind.String()}

	if res.Kind == wiki.ResolutionNotFound {
		result.Summary = wiki.HelpSummary(s.baseURL)
	} else {
		summary, hit, err := s.cache.Get(ctx, res.URL)
		if err != nil {
			result.Latency = time.Since(start)
			s.record(lookupID, query, userID, res.URL, "error", false, result.Latency)
			metrics.LookupTotal.WithLabelValues("error").Inc()
			logger.Error("Lookup failed",
				zap.String("lookup_id", lookupID),
				zap.String("query", query),
				zap.Error(err),
			)
			return nil, err
		}
		result.Summary = summary
		result.CacheHit = hit
	}

	result.Latency = time.Since(start)
	s.record(lookupID, query, userID, res.URL, result.Outcome, result.CacheHit, result.Latency)

	metrics.LookupTotal.WithLabelValues(result.Outcome).Inc()
	metrics.LookupDuration.WithLabelValues(result.Outcome).Observe(result.Latency.Seconds())

	logger.Info("Looked up page",
		zap.String("lookup_id", lookupID),
		zap.String("query", query),
		zap.String("user_id", userID),
		zap.String("outcome", result.Outcome),
		zap.Bool("cache_hit", result.CacheHit),
		zap.Duration("elapsed", result.Latency),
	)

	return result, nil
}

// record persists the lookup for the stats surfaces. Best-effort; a dead
// database never fails a lookup.
func (s *Service) record(id, query, userID, resolvedURL, outcome string, cacheHit bool, latency time.Duration) {
	if s.db == nil {
		return
	}
	err := s.db.InsertLookup(&models.LookupRecord{
		ID:          id,
		UserID:      userID,
		Query:       query,
		ResolvedURL: resolvedURL,
		Outcome:     outcome,
		CacheHit:    cacheHit,
		LatencyMS:   int(latency.Milliseconds()),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		logger.Warn("Failed to record lookup", zap.String("lookup_id", id), zap.Error(err))
	}
}
