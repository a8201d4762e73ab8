package exchange

import (
	"context"
	"time"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// ExchangeRepository is the read contract the engine requires from the
// external store for exchange records.
type ExchangeRepository interface {
	// CountForBook counts exchanges for the book created at or after the
	// given instant, regardless of status.
	CountForBook(ctx context.Context, bookID common.ID, createdAfter time.Time) (int, error)

	// CountCompletedForBook counts completed exchanges for the book across
	// all time.
	CountCompletedForBook(ctx context.Context, bookID common.ID) (int, error)

	// ListForBook returns exchanges for the book matching any of the given
	// statuses, restricted to the optional date range on EffectiveTime,
	// ordered ascending by creation time.
	ListForBook(ctx context.Context, bookID common.ID, statuses []Status, rng common.DateRange) ([]*Exchange, error)
}
