// Package catalog holds the book listing domain model as consumed by the
// valuation and analytics engine. Listings are created and mutated by the
// exchange workflow; this engine reads snapshots and writes back a freshly
// computed point value only.
package catalog

import (
	"time"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Condition describes the physical state of a listed book.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// AllConditions returns the canonical ordering from worst to best.
func AllConditions() []Condition {
	return []Condition{ConditionPoor, ConditionFair, ConditionGood, ConditionExcellent, ConditionNew}
}

// Rank returns the ordinal position of the condition, worst first.
// Unknown conditions rank alongside ConditionGood (the neutral middle).
func (c Condition) Rank() int {
	switch c {
	case ConditionPoor:
		return 0
	case ConditionFair:
		return 1
	case ConditionGood:
		return 2
	case ConditionExcellent:
		return 3
	case ConditionNew:
		return 4
	default:
		return 2
	}
}

// Valid reports whether c is one of the recognised conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Book is a read-model snapshot of a listing. ExchangeCount is the total
// historical exchange count for the listing, populated by the repository at
// load time so valuation needs a single round trip.
type Book struct {
	ID            common.ID
	Title         string
	Author        string
	Genre         string
	Condition     Condition
	ISBN          string
	PointValue    int
	Available     bool
	OwnerID       common.UserID
	CreatedAt     time.Time
	ExchangeCount int
}
