package analytics

import (
	"context"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/forum"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

const (
	// previewLength is the maximum excerpt length in runes.
	previewLength = 150

	// topChapterCount is how many chapters the popularity breakdown keeps.
	topChapterCount = 5

	defaultThreadLimit = 10

	// anonymousDisplayName replaces the author identity of anonymous
	// threads in every aggregated output.
	anonymousDisplayName = "Anonymous reader"
)

// ThreadAuthor is the redacted author view. For anonymous threads only the
// display name and the anonymity flag survive; the real identity never
// reaches aggregated output.
type ThreadAuthor struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ThreadPreview is one ranked, redacted thread in the summary page.
type ThreadPreview struct {
	ID           common.ID    `json:"id"`
	Title        string       `json:"title"`
	Excerpt      string       `json:"excerpt"`
	Chapter      string       `json:"chapter,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Pinned       bool         `json:"pinned"`
	Locked       bool         `json:"locked"`
	ViewCount    int          `json:"view_count"`
	CommentCount int          `json:"comment_count"`
	LikeCount    int          `json:"like_count"`
	Author       ThreadAuthor `json:"author"`
	CreatedAt    time.Time    `json:"created_at"`
}

// DiscussionStats is computed over the book's full thread set, independent
// of the truncated preview page.
type DiscussionStats struct {
	TotalThreads  int                  `json:"total_threads"`
	TotalComments int                  `json:"total_comments"`
	Participants  int                  `json:"participants"`
	TopChapters   []forum.ChapterCount `json:"top_chapters"`
}

// DiscussionSummary is the ranked and redacted forum-activity view.
type DiscussionSummary struct {
	Threads        []ThreadPreview `json:"threads"`
	Statistics     DiscussionStats `json:"statistics"`
	HasMoreThreads bool            `json:"has_more_threads"`
}

// DiscussionAggregator ranks and summarises forum activity for a book.
type DiscussionAggregator struct {
	threads forum.ForumRepository
	logger  logging.Logger
}

// NewDiscussionAggregator constructs a DiscussionAggregator.
func NewDiscussionAggregator(threads forum.ForumRepository, logger logging.Logger) *DiscussionAggregator {
	return &DiscussionAggregator{threads: threads, logger: logger}
}

// Summarize returns the top threads for a book (pinned first, then comment
// count, then recency) truncated to limit, plus statistics over the full
// set. Individual lookup failures degrade to zeroed sections; the summary
// itself never fails.
func (a *DiscussionAggregator) Summarize(ctx context.Context, bookID common.ID, limit int) (*DiscussionSummary, error) {
	if limit <= 0 {
		limit = defaultThreadLimit
	}

	threads, err := a.threads.ListForBook(ctx, bookID, true, limit)
	if err != nil {
		a.logger.Warn("discussion thread listing failed, returning empty page",
			logging.String("book_id", bookID.String()), logging.Err(err))
		threads = nil
	}

	previews := make([]ThreadPreview, 0, len(threads))
	for _, t := range threads {
		previews = append(previews, ThreadPreview{
			ID:           t.ID,
			Title:        t.Title,
			Excerpt:      truncateBody(t.Body),
			Chapter:      t.Chapter,
			Tags:         t.Tags,
			Pinned:       t.Pinned,
			Locked:       t.Locked,
			ViewCount:    t.ViewCount,
			CommentCount: t.CommentCount,
			LikeCount:    t.LikeCount,
			Author:       redactAuthor(t),
			CreatedAt:    t.CreatedAt,
		})
	}

	stats := a.collectStats(ctx, bookID)

	return &DiscussionSummary{
		Threads:        previews,
		Statistics:     stats,
		HasMoreThreads: stats.TotalThreads > limit,
	}, nil
}

// collectStats gathers the page-independent statistics. Each failed lookup
// degrades to its zero value.
func (a *DiscussionAggregator) collectStats(ctx context.Context, bookID common.ID) DiscussionStats {
	stats := DiscussionStats{TopChapters: []forum.ChapterCount{}}

	if n, err := a.threads.CountThreads(ctx, bookID); err != nil {
		a.logger.Warn("thread count failed", logging.String("book_id", bookID.String()), logging.Err(err))
	} else {
		stats.TotalThreads = n
	}

	if n, err := a.threads.CountComments(ctx, bookID); err != nil {
		a.logger.Warn("comment count failed", logging.String("book_id", bookID.String()), logging.Err(err))
	} else {
		stats.TotalComments = n
	}

	participants := make(map[common.UserID]bool)
	for _, source := range []forum.AuthorSource{forum.AuthorsFromThreads, forum.AuthorsFromComments} {
		authors, err := a.threads.ListDistinctAuthors(ctx, bookID, source)
		if err != nil {
			a.logger.Warn("distinct author listing failed",
				logging.String("book_id", bookID.String()),
				logging.String("source", string(source)),
				logging.Err(err))
			continue
		}
		for _, id := range authors {
			if id != "" {
				participants[id] = true
			}
		}
	}
	stats.Participants = len(participants)

	if chapters, err := a.threads.ChapterCounts(ctx, bookID); err != nil {
		a.logger.Warn("chapter counts failed", logging.String("book_id", bookID.String()), logging.Err(err))
	} else {
		if len(chapters) > topChapterCount {
			chapters = chapters[:topChapterCount]
		}
		stats.TopChapters = chapters
	}

	return stats
}

// redactAuthor builds the outward author view, dropping the real identity
// whenever the thread is anonymous.
func redactAuthor(t *forum.Thread) ThreadAuthor {
	if t.Anonymous {
		return ThreadAuthor{Name: anonymousDisplayName, IsAnonymous: true}
	}
	return ThreadAuthor{
		ID:     t.AuthorID.String(),
		Name:   t.AuthorName,
		Avatar: t.AuthorAvatar,
	}
}

// truncateBody shortens a thread body to previewLength runes, appending an
// ellipsis marker when anything was cut.
func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}
