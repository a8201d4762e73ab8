// Package analytics reconstructs historical trend, provenance-timeline, and
// discussion-activity views for a book listing from independent event
// sources. All computations are pure reads over the store state at
// invocation time and are safe to run concurrently across books.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// trendMonths is the length of the trailing calendar-month series.
const trendMonths = 6

// TrendDirection classifies how offered points moved across the window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// MonthlyPoint is one calendar-month bucket of offer statistics. A month
// with no offers reports the book's current stored value as its average so
// the series never shows a hole.
type MonthlyPoint struct {
	Month         string  `json:"month"` // "2006-01"
	Offers        int     `json:"offers"`
	AveragePoints float64 `json:"average_points"`
	MaxPoints     int     `json:"max_points"`
	MinPoints     int     `json:"min_points"`
}

// TrendReport is the trailing 6-month view of point offers for a book.
type TrendReport struct {
	BookID        common.ID      `json:"book_id"`
	CurrentValue  int            `json:"current_value"`
	Monthly       []MonthlyPoint `json:"monthly"` // always trendMonths entries
	Direction     TrendDirection `json:"direction"`
	PercentChange int            `json:"percent_change"`
	TotalOffers   int            `json:"total_offers"`
	Analysis      string         `json:"analysis"`
}

// TrendAnalyzer builds TrendReports.
type TrendAnalyzer struct {
	books     catalog.BookRepository
	exchanges exchange.ExchangeRepository
	logger    logging.Logger
}

// NewTrendAnalyzer constructs a TrendAnalyzer.
func NewTrendAnalyzer(books catalog.BookRepository, exchanges exchange.ExchangeRepository, logger logging.Logger) *TrendAnalyzer {
	return &TrendAnalyzer{books: books, exchanges: exchanges, logger: logger}
}

// Compute builds the trailing 6-month offer series ending at now's calendar
// month. Only a missing book surfaces as an error; an exchange-listing
// failure degrades to an offer-less report.
func (a *TrendAnalyzer) Compute(ctx context.Context, bookID common.ID, now time.Time) (*TrendReport, error) {
	book, err := a.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, wrapBookLookup(err, bookID)
	}

	windowStart := monthStart(now).AddDate(0, -(trendMonths - 1), 0)
	windowEnd := monthStart(now).AddDate(0, 1, 0)

	offers, err := a.exchanges.ListForBook(ctx, bookID, exchange.SettledStatuses(),
		common.DateRange{From: &windowStart, To: &windowEnd})
	if err != nil {
		a.logger.Warn("trend exchange listing failed, reporting no offers",
			logging.String("book_id", bookID.String()), logging.Err(err))
		offers = nil
	}

	type bucket struct {
		count int
		sum   int
		max   int
		min   int
	}
	buckets := make([]bucket, trendMonths)
	total := 0
	for _, ex := range offers {
		idx := monthsBetween(windowStart, ex.EffectiveTime())
		if idx < 0 || idx >= trendMonths {
			continue
		}
		b := &buckets[idx]
		if b.count == 0 || ex.PointsOffered > b.max {
			b.max = ex.PointsOffered
		}
		if b.count == 0 || ex.PointsOffered < b.min {
			b.min = ex.PointsOffered
		}
		b.count++
		b.sum += ex.PointsOffered
		total++
	}

	monthly := make([]MonthlyPoint, trendMonths)
	for i := range buckets {
		m := windowStart.AddDate(0, i, 0)
		p := MonthlyPoint{
			Month:  m.Format("2006-01"),
			Offers: buckets[i].count,
		}
		if buckets[i].count > 0 {
			p.AveragePoints = float64(buckets[i].sum) / float64(buckets[i].count)
			p.MaxPoints = buckets[i].max
			p.MinPoints = buckets[i].min
		} else {
			p.AveragePoints = float64(book.PointValue)
			p.MaxPoints = book.PointValue
			p.MinPoints = book.PointValue
		}
		monthly[i] = p
	}

	oldAvg := monthly[0].AveragePoints
	recentAvg := monthly[trendMonths-1].AveragePoints
	direction := TrendStable
	switch {
	case recentAvg > oldAvg:
		direction = TrendIncreasing
	case recentAvg < oldAvg:
		direction = TrendDecreasing
	}
	percentChange := 0
	if oldAvg != 0 {
		percentChange = int(math.Round((recentAvg - oldAvg) / oldAvg * 100))
	}

	return &TrendReport{
		BookID:        bookID,
		CurrentValue:  book.PointValue,
		Monthly:       monthly,
		Direction:     direction,
		PercentChange: percentChange,
		TotalOffers:   total,
		Analysis:      trendAnalysisText(direction, percentChange, total),
	}, nil
}

// trendAnalysisText renders the human-readable summary sentence. A book
// with no offers explicitly says so rather than describing a flat series.
func trendAnalysisText(direction TrendDirection, percentChange, totalOffers int) string {
	if totalOffers == 0 {
		return "There are no offers yet for this listing; the series shows its current point value."
	}
	switch direction {
	case TrendIncreasing:
		return fmt.Sprintf("Offered points are increasing, up %d%% over the last %d months across %d offers.",
			percentChange, trendMonths, totalOffers)
	case TrendDecreasing:
		return fmt.Sprintf("Offered points are decreasing, down %d%% over the last %d months across %d offers.",
			-percentChange, trendMonths, totalOffers)
	default:
		return fmt.Sprintf("Offered points are stable over the last %d months across %d offers.",
			trendMonths, totalOffers)
	}
}

// monthStart truncates t to the first instant of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthsBetween returns how many whole calendar months separate the month
// of t from the month of start.
func monthsBetween(start, t time.Time) int {
	return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
}
