// Package valuation derives the tradeable point value of a book listing
// from condition, scarcity, and demand signals, optionally refined by a
// generative appraisal with a deterministic fallback.
package valuation

import (
	"context"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// demandWindow is the trailing window over which exchange requests count
// toward demand.
const demandWindow = 30 * 24 * time.Hour

// DemandScorer maps recent exchange-request activity for a book onto a
// bounded discrete score.
type DemandScorer struct {
	exchanges exchange.ExchangeRepository
	logger    logging.Logger
}

// NewDemandScorer constructs a DemandScorer.
func NewDemandScorer(exchanges exchange.ExchangeRepository, logger logging.Logger) *DemandScorer {
	return &DemandScorer{exchanges: exchanges, logger: logger}
}

// Score counts exchanges created for the book within the trailing 30 days
// ending at now and maps the count to a score in [0, 5]. A lookup failure
// yields 0; the caller's fallback policy absorbs it.
func (s *DemandScorer) Score(ctx context.Context, bookID common.ID, now time.Time) int {
	count, err := s.exchanges.CountForBook(ctx, bookID, now.Add(-demandWindow))
	if err != nil {
		s.logger.Warn("demand lookup failed, scoring 0",
			logging.String("book_id", bookID.String()),
			logging.Err(err),
		)
		return 0
	}
	return DemandScoreFromCount(count)
}

// DemandScoreFromCount maps a 30-day exchange count onto [0, 5] via fixed
// thresholds. Monotonic non-decreasing, saturating at 5.
func DemandScoreFromCount(count int) int {
	switch {
	case count >= 10:
		return 5
	case count >= 7:
		return 4
	case count >= 4:
		return 3
	case count >= 2:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// RarityScorer maps the number of substitutable available copies of a work
// onto a bounded discrete score. Fewer copies on the platform increase
// exchange value.
type RarityScorer struct {
	books  catalog.BookRepository
	logger logging.Logger
}

// NewRarityScorer constructs a RarityScorer.
func NewRarityScorer(books catalog.BookRepository, logger logging.Logger) *RarityScorer {
	return &RarityScorer{books: books, logger: logger}
}

// Score counts currently-available copies sharing the ISBN; when the ISBN is
// absent or matches nothing, it falls back to a case-insensitive substring
// match on the title. The subject listing is included in the count, so a
// one-of-a-kind listing scores 3. Lookup failures yield 0.
func (s *RarityScorer) Score(ctx context.Context, isbn, title string) int {
	count := 0
	if isbn != "" {
		c, err := s.books.CountAvailableByISBN(ctx, isbn)
		if err != nil {
			s.logger.Warn("rarity ISBN lookup failed", logging.String("isbn", isbn), logging.Err(err))
		} else {
			count = c
		}
	}
	if count == 0 && title != "" {
		c, err := s.books.CountAvailableByTitle(ctx, title)
		if err != nil {
			s.logger.Warn("rarity title lookup failed", logging.String("title", title), logging.Err(err))
		} else {
			count = c
		}
	}
	return RarityScoreFromCount(count)
}

// RarityScoreFromCount maps an available-copy count onto [0, 3]. A count of
// zero should not occur for the book's own listing but is guarded against.
func RarityScoreFromCount(count int) int {
	switch {
	case count == 1:
		return 3
	case count == 2:
		return 2
	case count == 3 || count == 4:
		return 1
	default:
		return 0
	}
}
