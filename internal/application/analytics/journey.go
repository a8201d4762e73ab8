package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/domain/history"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// Timeline entry types. History entries keep their action tag as the type
// so the union stays self-describing.
const (
	EntryListed    = "listed"
	EntryExchanged = "exchanged"
)

// TimelineEntry is the common shape every journey event source normalises
// into before merging.
type TimelineEntry struct {
	Type        string          `json:"type"`
	Date        time.Time       `json:"date"`
	Actors      []common.UserID `json:"actors"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
	Points      int             `json:"points,omitempty"`
}

// JourneyStats summarises the merged timeline. All identity counts are over
// unique identities, never raw event counts.
type JourneyStats struct {
	TotalReaders         int     `json:"total_readers"`
	TotalExchanges       int     `json:"total_exchanges"`
	UniqueLocations      int     `json:"unique_locations"`
	DaysSinceListing     int     `json:"days_since_listing"`
	AverageDaysPerReader float64 `json:"average_days_per_reader"`
}

// JourneyReport is the chronological provenance reconstruction for a book.
type JourneyReport struct {
	BookID       common.ID       `json:"book_id"`
	Timeline     []TimelineEntry `json:"timeline"`
	Statistics   JourneyStats    `json:"statistics"`
	CurrentOwner common.UserID   `json:"current_owner"`
}

// JourneyReconstructor merges listing, exchange, and history events into a
// single timeline.
type JourneyReconstructor struct {
	books     catalog.BookRepository
	exchanges exchange.ExchangeRepository
	events    history.HistoryRepository
	logger    logging.Logger
}

// NewJourneyReconstructor constructs a JourneyReconstructor.
func NewJourneyReconstructor(
	books catalog.BookRepository,
	exchanges exchange.ExchangeRepository,
	events history.HistoryRepository,
	logger logging.Logger,
) *JourneyReconstructor {
	return &JourneyReconstructor{books: books, exchanges: exchanges, events: events, logger: logger}
}

// Compute gathers the three event sources, normalises them into
// TimelineEntry values, and merges them sorted ascending by date. The sort
// is stable: same-instant entries keep their population order of listing,
// then exchanges, then history. Only a missing book surfaces as an error.
func (r *JourneyReconstructor) Compute(ctx context.Context, bookID common.ID, now time.Time) (*JourneyReport, error) {
	book, err := r.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, wrapBookLookup(err, bookID)
	}

	timeline := []TimelineEntry{{
		Type:        EntryListed,
		Date:        book.CreatedAt,
		Actors:      []common.UserID{book.OwnerID},
		Description: fmt.Sprintf("%q listed for exchange", book.Title),
	}}

	settled, err := r.exchanges.ListForBook(ctx, bookID, exchange.SettledStatuses(), common.DateRange{})
	if err != nil {
		r.logger.Warn("journey exchange listing failed, omitting exchange entries",
			logging.String("book_id", bookID.String()), logging.Err(err))
		settled = nil
	}
	for _, ex := range settled {
		timeline = append(timeline, TimelineEntry{
			Type:        EntryExchanged,
			Date:        ex.EffectiveTime(),
			Actors:      []common.UserID{ex.RequesterID, ex.OwnerID},
			Description: fmt.Sprintf("Exchanged for %d points", ex.PointsOffered),
			Points:      ex.PointsOffered,
		})
	}

	logEvents, err := r.events.ListForBook(ctx, bookID)
	if err != nil {
		r.logger.Warn("journey history listing failed, omitting history entries",
			logging.String("book_id", bookID.String()), logging.Err(err))
		logEvents = nil
	}
	allowed := make(map[history.Action]bool, len(history.JourneyActions()))
	for _, a := range history.JourneyActions() {
		allowed[a] = true
	}
	for _, ev := range logEvents {
		if !allowed[ev.Action] {
			continue
		}
		desc := ev.Notes
		if desc == "" {
			desc = fmt.Sprintf("Book %s", ev.Action)
		}
		timeline = append(timeline, TimelineEntry{
			Type:        string(ev.Action),
			Date:        ev.CreatedAt,
			Actors:      []common.UserID{ev.UserID},
			Description: desc,
			Location:    ev.Location,
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Date.Before(timeline[j].Date)
	})

	return &JourneyReport{
		BookID:       bookID,
		Timeline:     timeline,
		Statistics:   journeyStats(timeline, book.CreatedAt, now),
		CurrentOwner: book.OwnerID,
	}, nil
}

// journeyStats computes summary statistics over the merged timeline.
func journeyStats(timeline []TimelineEntry, listedAt, now time.Time) JourneyStats {
	readers := make(map[common.UserID]bool)
	locations := make(map[string]bool)
	exchanges := 0
	for _, entry := range timeline {
		for _, actor := range entry.Actors {
			if actor != "" {
				readers[actor] = true
			}
		}
		if entry.Location != "" {
			locations[entry.Location] = true
		}
		if entry.Type == EntryExchanged {
			exchanges++
		}
	}

	days := int(now.Sub(listedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	avgDays := float64(days)
	if exchanges > 0 {
		avgDays = float64(days) / float64(exchanges)
	}

	return JourneyStats{
		TotalReaders:         len(readers),
		TotalExchanges:       exchanges,
		UniqueLocations:      len(locations),
		DaysSinceListing:     days,
		AverageDaysPerReader: avgDays,
	}
}
