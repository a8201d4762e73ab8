package repositories

import (
	"context"

	"github.com/shelfswap/shelfswap/internal/domain/history"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// HistoryRepo implements history.HistoryRepository.
type HistoryRepo struct {
	db DB
}

// NewHistoryRepo constructs a HistoryRepo.
func NewHistoryRepo(db DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

const listHistorySQL = `
SELECT id, book_id, user_id, action, COALESCE(notes, ''), COALESCE(location, ''), created_at
FROM book_history
WHERE book_id = $1
ORDER BY created_at ASC`

// ListForBook returns every history event for the book, oldest first.
func (r *HistoryRepo) ListForBook(ctx context.Context, bookID common.ID) ([]*history.Event, error) {
	rows, err := r.db.Query(ctx, listHistorySQL, string(bookID))
	if err != nil {
		return nil, wrapQueryErr(err, "list history for book")
	}
	defer rows.Close()

	var out []*history.Event
	for rows.Next() {
		var ev history.Event
		if err := rows.Scan(&ev.ID, &ev.BookID, &ev.UserID, &ev.Action,
			&ev.Notes, &ev.Location, &ev.CreatedAt); err != nil {
			return nil, wrapQueryErr(err, "scan history row")
		}
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate history rows")
	}
	return out, nil
}
