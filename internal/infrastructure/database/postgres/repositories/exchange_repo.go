package repositories

import (
	"context"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// ExchangeRepo implements exchange.ExchangeRepository.
type ExchangeRepo struct {
	db DB
}

// NewExchangeRepo constructs an ExchangeRepo.
func NewExchangeRepo(db DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

// CountForBook counts exchanges for the book created at or after the given
// instant, regardless of status.
func (r *ExchangeRepo) CountForBook(ctx context.Context, bookID common.ID, createdAfter time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM exchanges WHERE book_id = $1 AND created_at >= $2`,
		string(bookID), createdAfter).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count exchanges for book")
	}
	return n, nil
}

// CountCompletedForBook counts completed exchanges for the book across all
// time.
func (r *ExchangeRepo) CountCompletedForBook(ctx context.Context, bookID common.ID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM exchanges WHERE book_id = $1 AND status = $2`,
		string(bookID), string(exchange.StatusCompleted)).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count completed exchanges for book")
	}
	return n, nil
}

const listExchangesSQL = `
SELECT id, book_id, requester_id, owner_id, status, points_offered, created_at, completed_at
FROM exchanges
WHERE book_id = $1
  AND status = ANY($2)
  AND ($3::timestamptz IS NULL OR COALESCE(completed_at, created_at) >= $3)
  AND ($4::timestamptz IS NULL OR COALESCE(completed_at, created_at) < $4)
ORDER BY created_at ASC`

// ListForBook returns exchanges for the book matching any of the statuses,
// restricted to the optional half-open date range on the effective
// (completed-or-created) timestamp, ordered ascending by creation time.
func (r *ExchangeRepo) ListForBook(ctx context.Context, bookID common.ID, statuses []exchange.Status, rng common.DateRange) ([]*exchange.Exchange, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := r.db.Query(ctx, listExchangesSQL, string(bookID), names, rng.From, rng.To)
	if err != nil {
		return nil, wrapQueryErr(err, "list exchanges for book")
	}
	defer rows.Close()

	var out []*exchange.Exchange
	for rows.Next() {
		var ex exchange.Exchange
		if err := rows.Scan(&ex.ID, &ex.BookID, &ex.RequesterID, &ex.OwnerID,
			&ex.Status, &ex.PointsOffered, &ex.CreatedAt, &ex.CompletedAt); err != nil {
			return nil, wrapQueryErr(err, "scan exchange row")
		}
		out = append(out, &ex)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate exchange rows")
	}
	return out, nil
}
