package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Cache TTLs for derived analytics views.
const (
	overviewCacheTTL = 5 * time.Minute
	trendCacheTTL    = 10 * time.Minute
)

// BookAnalytics is the combined analytics view. Sections whose computation
// failed are nil and named in FailedSections; the overview itself only fails
// when the book is missing or every section failed.
type BookAnalytics struct {
	BookID         common.ID          `json:"book_id"`
	Trend          *TrendReport       `json:"trend,omitempty"`
	Journey        *JourneyReport     `json:"journey,omitempty"`
	Discussions    *DiscussionSummary `json:"discussions,omitempty"`
	FailedSections []string           `json:"failed_sections,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Cache is the port for read-through caching of derived views. Get reports
// whether the key was present and decoded into dest. GetOrSet collapses
// concurrent misses for the same key into a single load.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetOrSet(ctx context.Context, key string, ttl time.Duration, dest any, load func(ctx context.Context) (any, error)) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (noopCache) GetOrSet(ctx context.Context, _ string, _ time.Duration, dest any, load func(ctx context.Context) (any, error)) error {
	value, err := load(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// EventPublisher announces served overviews to downstream consumers.
type EventPublisher interface {
	PublishAnalyticsViewed(ctx context.Context, view *BookAnalytics) error
}

type noopPublisher struct{}

func (noopPublisher) PublishAnalyticsViewed(context.Context, *BookAnalytics) error { return nil }

// Service is the analytics read API consumed by the interfaces layer.
// Identifiers arrive as raw strings and are validated before any store
// access.
type Service interface {
	Overview(ctx context.Context, bookID string) (*BookAnalytics, error)
	Trend(ctx context.Context, bookID string) (*TrendReport, error)
	Journey(ctx context.Context, bookID string) (*JourneyReport, error)
	Discussions(ctx context.Context, bookID string, limit int) (*DiscussionSummary, error)
}

type service struct {
	books       catalog.BookRepository
	trend       *TrendAnalyzer
	journey     *JourneyReconstructor
	discussions *DiscussionAggregator
	cache       Cache
	metrics     MetricsCollector
	publisher   EventPublisher
	logger      logging.Logger
	now         func() time.Time
}

// ServiceOption customises Service construction.
type ServiceOption func(*service)

// WithCache wires a read-through cache for overview and trend views.
func WithCache(c Cache) ServiceOption {
	return func(s *service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMetrics wires a metrics collector.
func WithMetrics(m MetricsCollector) ServiceOption {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithPublisher wires an event publisher for analytics view announcements.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the service's notion of "now". Tests use this to pin
// trend windows and journey durations.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the analytics Service.
func NewService(
	books catalog.BookRepository,
	trend *TrendAnalyzer,
	journey *JourneyReconstructor,
	discussions *DiscussionAggregator,
	logger logging.Logger,
	opts ...ServiceOption,
) Service {
	s := &service{
		books:       books,
		trend:       trend,
		journey:     journey,
		discussions: discussions,
		cache:       noopCache{},
		metrics:     noopMetrics{},
		publisher:   noopPublisher{},
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview assembles the three analytics sections concurrently. A failing
// section is isolated: it becomes nil and is recorded in FailedSections. The
// call errors only on a malformed ID, a missing book, or when every section
// failed.
func (s *service) Overview(ctx context.Context, bookID string) (*BookAnalytics, error) {
	id, err := s.parseBookID(bookID)
	if err != nil {
		return nil, err
	}

	cacheKey := "analytics:overview:" + id.String()
	var cached BookAnalytics
	if hit := s.cacheGet(ctx, cacheKey, &cached); hit {
		s.announceView(ctx, &cached)
		return &cached, nil
	}

	// One existence check up front so a missing book fails fast instead of
	// producing three identical not-found warnings.
	if _, err := s.books.FindByID(ctx, id); err != nil {
		return nil, wrapBookLookup(err, id)
	}

	now := s.now()
	start := time.Now()
	out := &BookAnalytics{BookID: id, GeneratedAt: now}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	fail := func(section string, err error) {
		s.logger.Warn("analytics section failed",
			logging.String("book_id", id.String()),
			logging.String("section", section),
			logging.Err(err),
		)
		mu.Lock()
		failures = append(failures, section)
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		report, err := s.trend.Compute(ctx, id, now)
		if err != nil {
			fail("trend", err)
			return
		}
		out.Trend = report
	}()
	go func() {
		defer wg.Done()
		report, err := s.journey.Compute(ctx, id, now)
		if err != nil {
			fail("journey", err)
			return
		}
		out.Journey = report
	}()
	go func() {
		defer wg.Done()
		summary, err := s.discussions.Summarize(ctx, id, 0)
		if err != nil {
			fail("discussions", err)
			return
		}
		out.Discussions = summary
	}()
	wg.Wait()

	s.metrics.ObserveHistogram("analytics_overview_duration_seconds", time.Since(start).Seconds(), nil)

	if len(failures) == 3 {
		return nil, errors.New(errors.ErrCodePartialAggregation,
			"all analytics sections failed").WithDetail("book_id=" + id.String())
	}
	out.FailedSections = failures
	if len(failures) > 0 {
		s.metrics.IncCounter("analytics_partial_overview_total", nil)
	} else {
		// Only fully-assembled overviews are cacheable.
		s.cacheSet(ctx, cacheKey, out, overviewCacheTTL)
	}
	s.announceView(ctx, out)
	return out, nil
}

// announceView publishes the served overview, tolerating failure.
func (s *service) announceView(ctx context.Context, view *BookAnalytics) {
	if err := s.publisher.PublishAnalyticsViewed(ctx, view); err != nil {
		s.logger.Warn("analytics view announcement failed",
			logging.String("book_id", view.BookID.String()), logging.Err(err))
	}
}

// Trend returns the trailing 6-month offer series for a book. Concurrent
// cache misses for the same book collapse into a single computation.
func (s *service) Trend(ctx context.Context, bookID string) (*TrendReport, error) {
	id, err := s.parseBookID(bookID)
	if err != nil {
		return nil, err
	}

	var report TrendReport
	err = s.cache.GetOrSet(ctx, "analytics:trend:"+id.String(), trendCacheTTL, &report,
		func(ctx context.Context) (any, error) {
			return s.trend.Compute(ctx, id, s.now())
		})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeCacheError) || errors.IsCode(err, errors.ErrCodeSerialization) {
			// A cache-layer failure degrades to a direct compute.
			s.logger.Warn("trend cache failed, computing directly",
				logging.String("book_id", id.String()), logging.Err(err))
			return s.trend.Compute(ctx, id, s.now())
		}
		return nil, err
	}
	return &report, nil
}

// Journey returns the reconstructed provenance timeline for a book.
func (s *service) Journey(ctx context.Context, bookID string) (*JourneyReport, error) {
	id, err := s.parseBookID(bookID)
	if err != nil {
		return nil, err
	}
	return s.journey.Compute(ctx, id, s.now())
}

// Discussions returns the ranked, redacted forum summary for a book.
func (s *service) Discussions(ctx context.Context, bookID string, limit int) (*DiscussionSummary, error) {
	id, err := s.parseBookID(bookID)
	if err != nil {
		return nil, err
	}
	return s.discussions.Summarize(ctx, id, limit)
}

// parseBookID validates the raw identifier before any store access.
func (s *service) parseBookID(raw string) (common.ID, error) {
	id, err := common.ParseID(raw)
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidBookID, "malformed book id").WithDetail(raw)
	}
	return id, nil
}

// wrapBookLookup normalises a book lookup failure: a missing book keeps its
// not-found code, anything else surfaces as a database error instead of a
// phantom 404.
func wrapBookLookup(err error, bookID common.ID) error {
	if errors.IsNotFound(err) {
		return errors.Wrap(err, errors.ErrCodeBookNotFound,
			fmt.Sprintf("book %s not found", bookID))
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError,
		fmt.Sprintf("load book %s", bookID))
}

// cacheGet reads a derived view from the cache. Cache failures degrade to a
// miss.
func (s *service) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("analytics cache read failed", logging.String("key", key), logging.Err(err))
		return false
	}
	if hit {
		s.metrics.IncCounter("analytics_cache_hits_total", nil)
	} else {
		s.metrics.IncCounter("analytics_cache_misses_total", nil)
	}
	return hit
}

// cacheSet writes a derived view to the cache, tolerating failure.
func (s *service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("analytics cache write failed", logging.String("key", key), logging.Err(err))
	}
}
