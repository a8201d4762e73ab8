package history

import (
	"context"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// HistoryRepository is the read contract for the append-only history log.
type HistoryRepository interface {
	// ListForBook returns every history event for the book, ordered
	// ascending by creation time.
	ListForBook(ctx context.Context, bookID common.ID) ([]*Event, error)
}
