package analytics

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/domain/history"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

var journeyNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func journeyFixture(bookID common.ID, owner common.UserID) (*catalog.Book, []*exchange.Exchange, []*history.Event) {
	listedAt := journeyNow.AddDate(0, 0, -100)
	book := &catalog.Book{
		ID:        bookID,
		Title:     "The Dispossessed",
		Condition: catalog.ConditionGood,
		OwnerID:   owner,
		CreatedAt: listedAt,
	}

	reader1 := common.UserID(common.NewID())
	reader2 := common.UserID(common.NewID())

	completed1 := listedAt.AddDate(0, 0, 20)
	completed2 := listedAt.AddDate(0, 0, 60)
	exchanges := []*exchange.Exchange{
		{
			ID: common.NewID(), BookID: bookID,
			RequesterID: reader1, OwnerID: owner,
			Status: exchange.StatusCompleted, PointsOffered: 60,
			CreatedAt: completed1.AddDate(0, 0, -2), CompletedAt: &completed1,
		},
		{
			ID: common.NewID(), BookID: bookID,
			RequesterID: reader2, OwnerID: reader1,
			Status: exchange.StatusCompleted, PointsOffered: 70,
			CreatedAt: completed2.AddDate(0, 0, -3), CompletedAt: &completed2,
		},
	}

	events := []*history.Event{
		{
			ID: common.NewID(), BookID: bookID, UserID: reader1,
			Action: history.ActionRead, Notes: "Finished on a train through Oregon",
			Location: "Portland", CreatedAt: listedAt.AddDate(0, 0, 40),
		},
		{
			ID: common.NewID(), BookID: bookID, UserID: reader2,
			Action: history.ActionReviewed, Location: "Seattle",
			CreatedAt: listedAt.AddDate(0, 0, 80),
		},
		// Listing actions from the log never appear on the timeline.
		{
			ID: common.NewID(), BookID: bookID, UserID: owner,
			Action: history.ActionListed, CreatedAt: listedAt,
		},
	}
	return book, exchanges, events
}

func newJourneyReconstructor(books *bookRepoMock, exchanges *exchangeRepoMock, events *historyRepoMock) *JourneyReconstructor {
	return NewJourneyReconstructor(books, exchanges, events, logging.NewNopLogger())
}

func TestJourneyCompute_MergedSortedTimeline(t *testing.T) {
	bookID := common.NewID()
	owner := common.UserID(common.NewID())
	book, exchangeList, eventList := journeyFixture(bookID, owner)

	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)
	events := new(historyRepoMock)
	books.On("FindByID", mock.Anything, bookID).Return(book, nil)
	exchanges.On("ListForBook", mock.Anything, bookID, exchange.SettledStatuses(), common.DateRange{}).
		Return(exchangeList, nil)
	events.On("ListForBook", mock.Anything, bookID).Return(eventList, nil)

	r := newJourneyReconstructor(books, exchanges, events)
	report, err := r.Compute(context.Background(), bookID, journeyNow)
	require.NoError(t, err)

	// Listing + 2 exchanges + 2 allow-listed history events.
	require.Len(t, report.Timeline, 5)
	assert.Equal(t, EntryListed, report.Timeline[0].Type)
	assert.True(t, sort.SliceIsSorted(report.Timeline, func(i, j int) bool {
		return report.Timeline[i].Date.Before(report.Timeline[j].Date)
	}))
	assert.Equal(t, owner, report.CurrentOwner)

	// History event with notes keeps them as the description.
	var readEntry *TimelineEntry
	for i := range report.Timeline {
		if report.Timeline[i].Type == string(history.ActionRead) {
			readEntry = &report.Timeline[i]
		}
	}
	require.NotNil(t, readEntry)
	assert.Equal(t, "Finished on a train through Oregon", readEntry.Description)
	assert.Equal(t, "Portland", readEntry.Location)
}

func TestJourneyCompute_StatisticsUseUniqueIdentities(t *testing.T) {
	bookID := common.NewID()
	owner := common.UserID(common.NewID())
	book, exchangeList, eventList := journeyFixture(bookID, owner)

	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)
	events := new(historyRepoMock)
	books.On("FindByID", mock.Anything, bookID).Return(book, nil)
	exchanges.On("ListForBook", mock.Anything, bookID, mock.Anything, mock.Anything).
		Return(exchangeList, nil)
	events.On("ListForBook", mock.Anything, bookID).Return(eventList, nil)

	r := newJourneyReconstructor(books, exchanges, events)
	report, err := r.Compute(context.Background(), bookID, journeyNow)
	require.NoError(t, err)

	stats := report.Statistics
	// owner, reader1, reader2 — each appears in several entries but counts once.
	assert.Equal(t, 3, stats.TotalReaders)
	assert.Equal(t, 2, stats.TotalExchanges)
	assert.Equal(t, 2, stats.UniqueLocations)
	assert.Equal(t, 100, stats.DaysSinceListing)
	assert.Equal(t, float64(50), stats.AverageDaysPerReader)
}

func TestJourneyCompute_SortIsStableForSameInstant(t *testing.T) {
	bookID := common.NewID()
	owner := common.UserID(common.NewID())
	listedAt := journeyNow.AddDate(0, 0, -10)
	book := &catalog.Book{ID: bookID, Title: "Ties", OwnerID: owner, CreatedAt: listedAt}

	completedAt := listedAt
	exchangeList := []*exchange.Exchange{{
		ID: common.NewID(), BookID: bookID,
		RequesterID: common.UserID(common.NewID()), OwnerID: owner,
		Status: exchange.StatusCompleted, PointsOffered: 40,
		CreatedAt: listedAt, CompletedAt: &completedAt,
	}}
	eventList := []*history.Event{{
		ID: common.NewID(), BookID: bookID, UserID: owner,
		Action: history.ActionNoted, Notes: "Inscribed the flyleaf", CreatedAt: listedAt,
	}}

	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)
	events := new(historyRepoMock)
	books.On("FindByID", mock.Anything, bookID).Return(book, nil)
	exchanges.On("ListForBook", mock.Anything, bookID, mock.Anything, mock.Anything).
		Return(exchangeList, nil)
	events.On("ListForBook", mock.Anything, bookID).Return(eventList, nil)

	r := newJourneyReconstructor(books, exchanges, events)
	report, err := r.Compute(context.Background(), bookID, journeyNow)
	require.NoError(t, err)

	// Same instant keeps population order: listing, exchange, history.
	require.Len(t, report.Timeline, 3)
	assert.Equal(t, EntryListed, report.Timeline[0].Type)
	assert.Equal(t, EntryExchanged, report.Timeline[1].Type)
	assert.Equal(t, string(history.ActionNoted), report.Timeline[2].Type)
}

func TestJourneyCompute_SourceFailuresAreIsolated(t *testing.T) {
	bookID := common.NewID()
	owner := common.UserID(common.NewID())
	book := &catalog.Book{ID: bookID, Title: "Solo", OwnerID: owner, CreatedAt: journeyNow.AddDate(0, 0, -5)}

	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)
	events := new(historyRepoMock)
	books.On("FindByID", mock.Anything, bookID).Return(book, nil)
	exchanges.On("ListForBook", mock.Anything, bookID, mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "timeout"))
	events.On("ListForBook", mock.Anything, bookID).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "timeout"))

	r := newJourneyReconstructor(books, exchanges, events)
	report, err := r.Compute(context.Background(), bookID, journeyNow)
	require.NoError(t, err)

	// The listing entry always survives.
	require.Len(t, report.Timeline, 1)
	assert.Equal(t, EntryListed, report.Timeline[0].Type)
	assert.Equal(t, 5, report.Statistics.DaysSinceListing)
	assert.Equal(t, float64(5), report.Statistics.AverageDaysPerReader)
}

func TestJourneyCompute_BookNotFound(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	books.On("FindByID", mock.Anything, bookID).
		Return(nil, errors.New(errors.ErrCodeBookNotFound, "book not found"))

	r := newJourneyReconstructor(books, new(exchangeRepoMock), new(historyRepoMock))
	_, err := r.Compute(context.Background(), bookID, journeyNow)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestJourneyCompute_DatabaseFailureKeepsItsCode(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	books.On("FindByID", mock.Anything, bookID).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "connection reset"))

	r := newJourneyReconstructor(books, new(exchangeRepoMock), new(historyRepoMock))
	_, err := r.Compute(context.Background(), bookID, journeyNow)
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.GetCode(err))
}
