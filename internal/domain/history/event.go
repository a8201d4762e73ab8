// Package history holds the append-only book history log consumed by the
// journey reconstructor.
package history

import (
	"time"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Action tags a history event with what happened to the book.
type Action string

const (
	ActionListed   Action = "listed"
	ActionRead     Action = "read"
	ActionReviewed Action = "reviewed"
	ActionNoted    Action = "noted"
)

// JourneyActions is the fixed allow-list of actions that appear on a book's
// provenance timeline. Listing events come from the book record itself, not
// from this log.
func JourneyActions() []Action {
	return []Action{ActionRead, ActionReviewed, ActionNoted}
}

// Event is one append-only log entry tied to a book and a user.
type Event struct {
	ID        common.ID
	BookID    common.ID
	UserID    common.UserID
	Action    Action
	Notes     string
	Location  string
	CreatedAt time.Time
}
