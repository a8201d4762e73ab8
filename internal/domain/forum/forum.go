// Package forum holds the discussion domain model (threads and comments
// tied to a book) consumed by the discussion aggregator.
package forum

import (
	"time"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Thread is a discussion thread attached to a book listing.
type Thread struct {
	ID           common.ID
	BookID       common.ID
	AuthorID     common.UserID
	AuthorName   string
	AuthorAvatar string
	Title        string
	Body         string
	Chapter      string
	Tags         []string
	Pinned       bool
	Locked       bool
	Moderated    bool
	Anonymous    bool
	ViewCount    int
	CommentCount int
	LikeCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is a reply within a thread.
type Comment struct {
	ID        common.ID
	ThreadID  common.ID
	AuthorID  common.UserID
	Body      string
	Anonymous bool
	CreatedAt time.Time
}

// AuthorSource selects which author population a distinct-author query
// draws from.
type AuthorSource string

const (
	AuthorsFromThreads  AuthorSource = "threads"
	AuthorsFromComments AuthorSource = "comments"
)

// ChapterCount is the number of threads discussing a single chapter.
type ChapterCount struct {
	Chapter string `json:"chapter"`
	Threads int    `json:"threads"`
}
