package forum

import (
	"context"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// ForumRepository is the read contract the engine requires for discussion
// data. Anonymous authorship is stored, never synthesised: redaction of
// anonymous identities is the aggregator's responsibility.
type ForumRepository interface {
	// ListForBook returns threads for the book, optionally excluding
	// moderated ones, ordered pinned-first, then by descending comment
	// count, then by descending creation time, truncated to limit.
	// A limit <= 0 means no truncation.
	ListForBook(ctx context.Context, bookID common.ID, excludeModerated bool, limit int) ([]*Thread, error)

	// CountThreads counts every non-moderated thread for the book.
	CountThreads(ctx context.Context, bookID common.ID) (int, error)

	// CountComments counts comments across all of the book's threads.
	CountComments(ctx context.Context, bookID common.ID) (int, error)

	// ListDistinctAuthors returns the distinct non-anonymous author
	// identities from the chosen population for the book.
	ListDistinctAuthors(ctx context.Context, bookID common.ID, source AuthorSource) ([]common.UserID, error)

	// ChapterCounts returns per-chapter thread counts for the book, ordered
	// by descending count. Threads without a chapter tag are omitted.
	ChapterCounts(ctx context.Context, bookID common.ID) ([]ChapterCount, error)
}
