// Package exchange holds the exchange-request domain model. Exchanges are
// driven by the marketplace workflow; the engine consumes them as demand and
// price-history signals.
package exchange

import (
	"time"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Status is the lifecycle state of an exchange request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// SettledStatuses are the statuses that carry a meaningful point offer for
// trend and journey purposes.
func SettledStatuses() []Status {
	return []Status{StatusConfirmed, StatusCompleted}
}

// Exchange links a requester and an owner to a book listing. Immutable once
// completed except for the status and points already set.
type Exchange struct {
	ID            common.ID
	BookID        common.ID
	RequesterID   common.UserID
	OwnerID       common.UserID
	Status        Status
	PointsOffered int
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// EffectiveTime returns the completion timestamp when present, otherwise the
// creation timestamp. Trend bucketing uses this as the offer's point in time.
func (e *Exchange) EffectiveTime() time.Time {
	if e.CompletedAt != nil {
		return *e.CompletedAt
	}
	return e.CreatedAt
}
