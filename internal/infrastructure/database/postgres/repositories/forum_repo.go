package repositories

import (
	"context"

	"github.com/shelfswap/shelfswap/internal/domain/forum"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// ForumRepo implements forum.ForumRepository. Thread queries join the users
// table for author display data; the aggregator decides what of it survives
// redaction.
type ForumRepo struct {
	db DB
}

// NewForumRepo constructs a ForumRepo.
func NewForumRepo(db DB) *ForumRepo {
	return &ForumRepo{db: db}
}

const listThreadsSQL = `
SELECT t.id, t.book_id, t.author_id,
       COALESCE(u.display_name, ''), COALESCE(u.avatar_url, ''),
       t.title, t.body, COALESCE(t.chapter, ''), COALESCE(t.tags, '{}'),
       t.pinned, t.locked, t.moderated, t.anonymous,
       t.view_count, t.comment_count, t.like_count,
       t.created_at, t.updated_at
FROM threads t
LEFT JOIN users u ON u.id = t.author_id
WHERE t.book_id = $1
  AND (NOT $2 OR NOT t.moderated)
ORDER BY t.pinned DESC, t.comment_count DESC, t.created_at DESC
LIMIT CASE WHEN $3 > 0 THEN $3 ELSE NULL END`

// ListForBook returns threads for the book ordered pinned-first, then by
// descending comment count, then newest first. A limit <= 0 disables
// truncation.
func (r *ForumRepo) ListForBook(ctx context.Context, bookID common.ID, excludeModerated bool, limit int) ([]*forum.Thread, error) {
	rows, err := r.db.Query(ctx, listThreadsSQL, string(bookID), excludeModerated, limit)
	if err != nil {
		return nil, wrapQueryErr(err, "list threads for book")
	}
	defer rows.Close()

	var out []*forum.Thread
	for rows.Next() {
		var t forum.Thread
		if err := rows.Scan(&t.ID, &t.BookID, &t.AuthorID, &t.AuthorName, &t.AuthorAvatar,
			&t.Title, &t.Body, &t.Chapter, &t.Tags,
			&t.Pinned, &t.Locked, &t.Moderated, &t.Anonymous,
			&t.ViewCount, &t.CommentCount, &t.LikeCount,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrapQueryErr(err, "scan thread row")
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate thread rows")
	}
	return out, nil
}

// CountThreads counts every non-moderated thread for the book.
func (r *ForumRepo) CountThreads(ctx context.Context, bookID common.ID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM threads WHERE book_id = $1 AND NOT moderated`,
		string(bookID)).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count threads for book")
	}
	return n, nil
}

// CountComments counts comments across all of the book's threads.
func (r *ForumRepo) CountComments(ctx context.Context, bookID common.ID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM comments c
		 JOIN threads t ON t.id = c.thread_id
		 WHERE t.book_id = $1`,
		string(bookID)).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count comments for book")
	}
	return n, nil
}

// ListDistinctAuthors returns distinct non-anonymous author identities from
// the chosen population.
func (r *ForumRepo) ListDistinctAuthors(ctx context.Context, bookID common.ID, source forum.AuthorSource) ([]common.UserID, error) {
	var sql string
	switch source {
	case forum.AuthorsFromComments:
		sql = `SELECT DISTINCT c.author_id
		       FROM comments c
		       JOIN threads t ON t.id = c.thread_id
		       WHERE t.book_id = $1 AND NOT c.anonymous`
	default:
		sql = `SELECT DISTINCT author_id
		       FROM threads
		       WHERE book_id = $1 AND NOT anonymous`
	}

	rows, err := r.db.Query(ctx, sql, string(bookID))
	if err != nil {
		return nil, wrapQueryErr(err, "list distinct authors for book")
	}
	defer rows.Close()

	var out []common.UserID
	for rows.Next() {
		var id common.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapQueryErr(err, "scan author row")
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate author rows")
	}
	return out, nil
}

// ChapterCounts returns per-chapter thread counts ordered by descending
// count. Untagged threads are omitted.
func (r *ForumRepo) ChapterCounts(ctx context.Context, bookID common.ID) ([]forum.ChapterCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT chapter, COUNT(*) AS threads
		 FROM threads
		 WHERE book_id = $1 AND chapter IS NOT NULL AND chapter <> '' AND NOT moderated
		 GROUP BY chapter
		 ORDER BY threads DESC, chapter ASC`,
		string(bookID))
	if err != nil {
		return nil, wrapQueryErr(err, "count threads by chapter")
	}
	defer rows.Close()

	var out []forum.ChapterCount
	for rows.Next() {
		var cc forum.ChapterCount
		if err := rows.Scan(&cc.Chapter, &cc.Threads); err != nil {
			return nil, wrapQueryErr(err, "scan chapter count row")
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate chapter count rows")
	}
	return out, nil
}
