package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Valuation is a computed point value for a book.
type Valuation struct {
	BookID      string    `json:"book_id"`
	Points      int       `json:"points"`
	Source      string    `json:"source"`
	Reasoning   string    `json:"reasoning,omitempty"`
	DemandScore int       `json:"demand_score"`
	RarityScore int       `json:"rarity_score"`
	ComputedAt  time.Time `json:"computed_at"`
}

// MonthlyPoint is one calendar-month bucket of offer statistics.
type MonthlyPoint struct {
	Month         string  `json:"month"`
	Offers        int     `json:"offers"`
	AveragePoints float64 `json:"average_points"`
	MaxPoints     int     `json:"max_points"`
	MinPoints     int     `json:"min_points"`
}

// TrendReport is the trailing 6-month view of point offers.
type TrendReport struct {
	BookID        string         `json:"book_id"`
	CurrentValue  int            `json:"current_value"`
	Monthly       []MonthlyPoint `json:"monthly"`
	Direction     string         `json:"direction"`
	PercentChange int            `json:"percent_change"`
	TotalOffers   int            `json:"total_offers"`
	Analysis      string         `json:"analysis"`
}

// TimelineEntry is one event on a book's provenance timeline.
type TimelineEntry struct {
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Actors      []string  `json:"actors"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Points      int       `json:"points,omitempty"`
}

// JourneyStats summarises a book's timeline.
type JourneyStats struct {
	TotalReaders         int     `json:"total_readers"`
	TotalExchanges       int     `json:"total_exchanges"`
	UniqueLocations      int     `json:"unique_locations"`
	DaysSinceListing     int     `json:"days_since_listing"`
	AverageDaysPerReader float64 `json:"average_days_per_reader"`
}

// JourneyReport is the chronological provenance reconstruction for a book.
type JourneyReport struct {
	BookID       string          `json:"book_id"`
	Timeline     []TimelineEntry `json:"timeline"`
	Statistics   JourneyStats    `json:"statistics"`
	CurrentOwner string          `json:"current_owner"`
}

// ThreadAuthor is the redacted author view of a discussion thread.
type ThreadAuthor struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ThreadPreview is one ranked thread in a discussion summary.
type ThreadPreview struct {
	ID           string       `json:"id"`
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

// ChapterCount is the number of threads discussing one chapter.
type ChapterCount struct {
	Chapter string `json:"chapter"`
	Threads int    `json:"threads"`
}

// DiscussionStats summarises a book's full thread set.
type DiscussionStats struct {
	TotalThreads  int            `json:"total_threads"`
	TotalComments int            `json:"total_comments"`
	Participants  int            `json:"participants"`
	TopChapters   []ChapterCount `json:"top_chapters"`
}

// DiscussionSummary is the ranked and redacted forum-activity view.
type DiscussionSummary struct {
	Threads        []ThreadPreview `json:"threads"`
	Statistics     DiscussionStats `json:"statistics"`
	HasMoreThreads bool            `json:"has_more_threads"`
}

// BookAnalytics is the combined analytics view. Failed sections are nil.
type BookAnalytics struct {
	BookID         string             `json:"book_id"`
	Trend          *TrendReport       `json:"trend,omitempty"`
	Journey        *JourneyReport     `json:"journey,omitempty"`
	Discussions    *DiscussionSummary `json:"discussions,omitempty"`
	FailedSections []string           `json:"failed_sections,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Analytics fetches the combined analytics overview for a book.
func (c *Client) Analytics(ctx context.Context, bookID string) (*BookAnalytics, error) {
	var out BookAnalytics
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID)+"/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trend fetches the trailing 6-month offer series for a book.
func (c *Client) Trend(ctx context.Context, bookID string) (*TrendReport, error) {
	var out TrendReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID)+"/trend", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Journey fetches the provenance timeline for a book.
func (c *Client) Journey(ctx context.Context, bookID string) (*JourneyReport, error) {
	var out JourneyReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID)+"/journey", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Discussions fetches the ranked discussion summary for a book. A limit of
// 0 uses the server default.
func (c *Client) Discussions(ctx context.Context, bookID string, limit int) (*DiscussionSummary, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	var out DiscussionSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID)+"/discussions", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Value computes a fresh valuation without persisting it.
func (c *Client) Value(ctx context.Context, bookID string) (*Valuation, error) {
	var out Valuation
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+url.PathEscape(bookID)+"/value", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Revalue computes, persists, and announces a fresh point value.
func (c *Client) Revalue(ctx context.Context, bookID string) (*Valuation, error) {
	var out Valuation
	if err := c.do(ctx, http.MethodPost, "/api/v1/books/"+url.PathEscape(bookID)+"/revalue", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
