package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	appraisal "github.com/shelfswap/shelfswap/internal/intelligence/appraisal_gpt"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Point value bounds and fallback parameters.
const (
	MinPoints  = 10
	MaxPoints  = 500
	basePoints = 50

	maxDemandMultiplier  = 1.5
	demandMultiplierStep = 0.05
)

// conditionMultipliers scales the fallback base by physical condition.
// Unknown conditions are treated as neutral.
var conditionMultipliers = map[catalog.Condition]float64{
	catalog.ConditionNew:       1.5,
	catalog.ConditionExcellent: 1.3,
	catalog.ConditionGood:      1.0,
	catalog.ConditionFair:      0.7,
	catalog.ConditionPoor:      0.5,
}

// Source records which path produced a valuation.
type Source string

const (
	SourceAppraisal Source = "appraisal"
	SourceFallback  Source = "fallback"
)

// Valuation is the result of a point-value computation. Points always lie
// in [MinPoints, MaxPoints].
type Valuation struct {
	BookID      common.ID `json:"book_id"`
	Points      int       `json:"points"`
	Source      Source    `json:"source"`
	Reasoning   string    `json:"reasoning,omitempty"`
	DemandScore int       `json:"demand_score"`
	RarityScore int       `json:"rarity_score"`
	ComputedAt  time.Time `json:"computed_at"`
}

// appraisalOutcome makes the degraded-external-service branch explicit: the
// appraisal either produced a usable suggestion or a degradation reason,
// never an error the caller has to catch.
type appraisalOutcome struct {
	suggestion *appraisal.Suggestion
	degraded   string
}

// EventPublisher is the port through which the engine announces persisted
// revaluations to downstream consumers.
type EventPublisher interface {
	PublishBookValued(ctx context.Context, v *Valuation) error
}

// Cache is the minimal cache port the engine needs to invalidate derived
// analytics after a write-back.
type Cache interface {
	Delete(ctx context.Context, keys ...string) error
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

type noopPublisher struct{}

func (noopPublisher) PublishBookValued(context.Context, *Valuation) error { return nil }

type noopCache struct{}

func (noopCache) Delete(context.Context, ...string) error { return nil }

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// Engine computes and persists point values. It is stateless and safe for
// concurrent use across books.
type Engine struct {
	books     catalog.BookRepository
	exchanges exchange.ExchangeRepository
	demand    *DemandScorer
	rarity    *RarityScorer
	appraiser appraisal.Appraiser
	publisher EventPublisher
	cache     Cache
	metrics   MetricsCollector
	logger    logging.Logger
	now       func() time.Time
}

// EngineOption customises Engine construction.
type EngineOption func(*Engine)

// WithPublisher wires an event publisher for persisted revaluations.
func WithPublisher(p EventPublisher) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithCache wires the analytics cache invalidated on write-back.
func WithCache(c Cache) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithMetrics wires a metrics collector.
func WithMetrics(m MetricsCollector) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock overrides the engine's notion of "now". Tests use this to pin
// the demand window.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs a valuation Engine. The appraiser may be disabled;
// the engine then always takes the deterministic fallback path.
func NewEngine(
	books catalog.BookRepository,
	exchanges exchange.ExchangeRepository,
	appraiser appraisal.Appraiser,
	logger logging.Logger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		books:     books,
		exchanges: exchanges,
		demand:    NewDemandScorer(exchanges, logger),
		rarity:    NewRarityScorer(books, logger),
		appraiser: appraiser,
		publisher: noopPublisher{},
		cache:     noopCache{},
		metrics:   noopMetrics{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeValue derives the point value for a book. Only a missing book or a
// malformed identifier surfaces as an error; appraisal failures silently
// degrade to the deterministic fallback.
func (e *Engine) ComputeValue(ctx context.Context, bookID common.ID) (*Valuation, error) {
	return e.computeValueAt(ctx, bookID, e.now())
}

func (e *Engine) computeValueAt(ctx context.Context, bookID common.ID, now time.Time) (*Valuation, error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveHistogram("valuation_compute_duration_seconds", time.Since(start).Seconds(), nil)
	}()

	if bookID == "" {
		return nil, errors.NewValidation("book id is required")
	}

	book, err := e.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.ErrCodeBookNotFound,
				fmt.Sprintf("book %s not found", bookID))
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("load book %s", bookID))
	}

	// Demand, rarity, and the completed-exchange count are independent
	// reads; fetch them concurrently. The scorers absorb their own lookup
	// failures, so only the goroutines' context matters here.
	var (
		demandScore    int
		rarityScore    int
		completedCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		demandScore = e.demand.Score(gctx, bookID, now)
		return nil
	})
	g.Go(func() error {
		rarityScore = e.rarity.Score(gctx, book.ISBN, book.Title)
		return nil
	})
	g.Go(func() error {
		n, countErr := e.exchanges.CountCompletedForBook(gctx, bookID)
		if countErr != nil {
			e.logger.Warn("completed-exchange count failed, assuming 0",
				logging.String("book_id", bookID.String()), logging.Err(countErr))
			return nil
		}
		completedCount = n
		return nil
	})
	_ = g.Wait()

	outcome := e.tryAppraisal(ctx, book, demandScore, rarityScore, completedCount)

	v := &Valuation{
		BookID:      bookID,
		DemandScore: demandScore,
		RarityScore: rarityScore,
		ComputedAt:  now,
	}
	if outcome.suggestion != nil {
		v.Points = Clamp(outcome.suggestion.Points)
		v.Source = SourceAppraisal
		v.Reasoning = outcome.suggestion.Reasoning
	} else {
		v.Points = Clamp(FallbackPoints(book.Condition, completedCount))
		v.Source = SourceFallback
	}

	e.metrics.IncCounter("valuation_computed_total", map[string]string{"source": string(v.Source)})
	return v, nil
}

// RevalueBook computes a fresh point value, writes it back onto the listing,
// invalidates cached analytics for the book, and announces the change.
// Write-back failure is fatal; publish and cache failures are not.
func (e *Engine) RevalueBook(ctx context.Context, bookID common.ID) (*Valuation, error) {
	v, err := e.ComputeValue(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := e.books.UpdatePointValue(ctx, bookID, v.Points); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "persist point value")
	}

	if err := e.cache.Delete(ctx, AnalyticsCacheKeys(bookID)...); err != nil {
		e.logger.Warn("analytics cache invalidation failed",
			logging.String("book_id", bookID.String()), logging.Err(err))
	}

	if err := e.publisher.PublishBookValued(ctx, v); err != nil {
		e.logger.Warn("book.valued publish failed",
			logging.String("book_id", bookID.String()), logging.Err(err))
	}

	e.logger.Info("book revalued",
		logging.String("book_id", bookID.String()),
		logging.Int("points", v.Points),
		logging.String("source", string(v.Source)),
	)
	return v, nil
}

// tryAppraisal attempts the AI-assisted estimate. A disabled service is the
// normal degraded case and skips the call entirely.
func (e *Engine) tryAppraisal(ctx context.Context, book *catalog.Book, demandScore, rarityScore, completedCount int) appraisalOutcome {
	if e.appraiser == nil || !e.appraiser.Enabled() {
		return appraisalOutcome{degraded: "appraisal service disabled"}
	}

	suggestion, err := e.appraiser.SuggestPoints(ctx, &appraisal.PromptInput{
		Title:         book.Title,
		Author:        book.Author,
		Genre:         book.Genre,
		Condition:     string(book.Condition),
		DemandScore:   demandScore,
		RarityScore:   rarityScore,
		ExchangeCount: completedCount,
		MinPoints:     MinPoints,
		MaxPoints:     MaxPoints,
	})
	if err != nil {
		e.metrics.IncCounter("valuation_appraisal_degraded_total", nil)
		e.logger.Warn("appraisal degraded, using fallback",
			logging.String("book_id", book.ID.String()),
			logging.Err(err),
		)
		return appraisalOutcome{degraded: err.Error()}
	}
	return appraisalOutcome{suggestion: suggestion}
}

// FallbackPoints is the deterministic valuation used whenever the appraisal
// is unavailable: base 50 scaled by condition and by completed-exchange
// demand, the latter capped at 1.5.
func FallbackPoints(cond catalog.Condition, completedExchanges int) int {
	condMult, ok := conditionMultipliers[cond]
	if !ok {
		condMult = 1.0
	}
	demandMult := 1.0 + demandMultiplierStep*float64(completedExchanges)
	if demandMult > maxDemandMultiplier {
		demandMult = maxDemandMultiplier
	}
	return int(math.Round(basePoints * condMult * demandMult))
}

// Clamp bounds a point value into [MinPoints, MaxPoints].
func Clamp(points int) int {
	if points < MinPoints {
		return MinPoints
	}
	if points > MaxPoints {
		return MaxPoints
	}
	return points
}

// AnalyticsCacheKeys lists the cached analytics entries a revaluation makes
// stale.
func AnalyticsCacheKeys(bookID common.ID) []string {
	id := bookID.String()
	return []string{
		"analytics:overview:" + id,
		"analytics:trend:" + id,
	}
}
