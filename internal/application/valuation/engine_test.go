package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	appraisal "github.com/shelfswap/shelfswap/internal/intelligence/appraisal_gpt"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testBook(id common.ID, cond catalog.Condition) *catalog.Book {
	return &catalog.Book{
		ID:         id,
		Title:      "The Left Hand of Darkness",
		Author:     "Ursula K. Le Guin",
		Genre:      "science fiction",
		Condition:  cond,
		ISBN:       "9780441478125",
		PointValue: 50,
		Available:  true,
		OwnerID:    common.UserID(common.NewID()),
		CreatedAt:  testNow.AddDate(-1, 0, 0),
	}
}

// newTestEngine wires an engine over the mocks with a pinned clock and a
// disabled appraiser unless the test overrides it.
func newTestEngine(books *bookRepoMock, exchanges *exchangeRepoMock, appraiser appraisal.Appraiser, opts ...EngineOption) *Engine {
	if appraiser == nil {
		m := new(appraiserMock)
		m.On("Enabled").Return(false)
		appraiser = m
	}
	opts = append([]EngineOption{WithClock(func() time.Time { return testNow })}, opts...)
	return NewEngine(books, exchanges, appraiser, logging.NewNopLogger(), opts...)
}

func TestFallbackPoints(t *testing.T) {
	cases := []struct {
		name      string
		cond      catalog.Condition
		completed int
		want      int
	}{
		{"excellent no history", catalog.ConditionExcellent, 0, 65},
		{"good capped demand", catalog.ConditionGood, 10, 75},
		{"good one exchange", catalog.ConditionGood, 1, 53},
		{"new capped demand", catalog.ConditionNew, 20, 113},
		{"poor no history", catalog.ConditionPoor, 0, 25},
		{"fair two exchanges", catalog.ConditionFair, 2, 39},
		{"unknown condition is neutral", catalog.Condition("mint"), 0, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FallbackPoints(tc.cond, tc.completed))
		})
	}
}

func TestFallbackPoints_MonotonicInConditionRank(t *testing.T) {
	// At any fixed completed-exchange count, a better condition is always
	// worth strictly more: poor < fair < good < excellent < new.
	for _, completed := range []int{0, 1, 3, 10, 25} {
		conditions := catalog.AllConditions()
		prev := FallbackPoints(conditions[0], completed)
		for _, cond := range conditions[1:] {
			p := FallbackPoints(cond, completed)
			assert.Greater(t, p, prev, "condition=%s completed=%d", cond, completed)
			prev = p
		}
	}
}

func TestFallbackPoints_MonotonicInCompletedCount(t *testing.T) {
	for _, cond := range catalog.AllConditions() {
		prev := FallbackPoints(cond, 0)
		for completed := 1; completed <= 30; completed++ {
			p := FallbackPoints(cond, completed)
			assert.GreaterOrEqual(t, p, prev, "condition=%s completed=%d", cond, completed)
			prev = p
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, MinPoints, Clamp(0))
	assert.Equal(t, MinPoints, Clamp(-50))
	assert.Equal(t, MinPoints, Clamp(MinPoints))
	assert.Equal(t, 250, Clamp(250))
	assert.Equal(t, MaxPoints, Clamp(MaxPoints))
	assert.Equal(t, MaxPoints, Clamp(9999))
}

func TestClampedFallbackAlwaysInBounds(t *testing.T) {
	conditions := append(catalog.AllConditions(), catalog.Condition("unknown"))
	for _, cond := range conditions {
		for completed := 0; completed <= 40; completed += 4 {
			p := Clamp(FallbackPoints(cond, completed))
			assert.GreaterOrEqual(t, p, MinPoints)
			assert.LessOrEqual(t, p, MaxPoints)
		}
	}
}

func TestComputeValue_FallbackWhenAppraisalDisabled(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionGood), nil)
	books.On("CountAvailableByISBN", mock.Anything, "9780441478125").Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(5, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(2, nil)

	e := newTestEngine(books, exchanges, nil)
	v, err := e.ComputeValue(context.Background(), bookID)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, v.Source)
	assert.Equal(t, 55, v.Points) // 50 * 1.0 * 1.10
	assert.Equal(t, 3, v.DemandScore)
	assert.Equal(t, 3, v.RarityScore)
	assert.Empty(t, v.Reasoning)
	assert.Equal(t, testNow, v.ComputedAt)
}

func TestComputeValue_UsesAppraisalSuggestion(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionExcellent), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(12, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(7, nil)

	appraiser := new(appraiserMock)
	appraiser.On("Enabled").Return(true)
	appraiser.On("SuggestPoints", mock.Anything, mock.MatchedBy(func(in *appraisal.PromptInput) bool {
		return in.DemandScore == 5 && in.RarityScore == 3 && in.ExchangeCount == 7 &&
			in.MinPoints == MinPoints && in.MaxPoints == MaxPoints
	})).Return(&appraisal.Suggestion{Points: 420, Reasoning: "first edition, high demand"}, nil)

	e := newTestEngine(books, exchanges, appraiser)
	v, err := e.ComputeValue(context.Background(), bookID)
	require.NoError(t, err)

	assert.Equal(t, SourceAppraisal, v.Source)
	assert.Equal(t, 420, v.Points)
	assert.Equal(t, "first edition, high demand", v.Reasoning)
	appraiser.AssertExpectations(t)
}

func TestComputeValue_AppraisalErrorFallsBack(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionFair), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(3, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(0, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(0, nil)

	appraiser := new(appraiserMock)
	appraiser.On("Enabled").Return(true)
	appraiser.On("SuggestPoints", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeExternalService, "upstream timeout"))

	e := newTestEngine(books, exchanges, appraiser)
	v, err := e.ComputeValue(context.Background(), bookID)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, v.Source)
	assert.Equal(t, 35, v.Points) // 50 * 0.7
}

func TestComputeValue_BookNotFound(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	books.On("FindByID", mock.Anything, bookID).
		Return(nil, errors.New(errors.ErrCodeBookNotFound, "book not found"))

	e := newTestEngine(books, new(exchangeRepoMock), nil)
	_, err := e.ComputeValue(context.Background(), bookID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBookNotFound))
}

func TestComputeValue_DatabaseFailureKeepsItsCode(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	books.On("FindByID", mock.Anything, bookID).
		Return(nil, errors.New(errors.ErrCodeDatabaseError, "connection reset"))

	e := newTestEngine(books, new(exchangeRepoMock), nil)
	_, err := e.ComputeValue(context.Background(), bookID)
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.GetCode(err))
}

func TestComputeValue_EmptyID(t *testing.T) {
	e := newTestEngine(new(bookRepoMock), new(exchangeRepoMock), nil)
	_, err := e.ComputeValue(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRevalueBook_PersistsPublishesAndInvalidates(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionGood), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(0, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(0, nil)
	books.On("UpdatePointValue", mock.Anything, bookID, 50).Return(nil)

	publisher := new(publisherMock)
	publisher.On("PublishBookValued", mock.Anything, mock.MatchedBy(func(v *Valuation) bool {
		return v.BookID == bookID && v.Points == 50
	})).Return(nil)

	cache := new(cacheMock)
	cache.On("Delete", mock.Anything, AnalyticsCacheKeys(bookID)).Return(nil)

	e := newTestEngine(books, exchanges, nil, WithPublisher(publisher), WithCache(cache))
	v, err := e.RevalueBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, 50, v.Points)

	books.AssertExpectations(t)
	publisher.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRevalueBook_WriteBackFailureIsFatal(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionGood), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(0, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(0, nil)
	books.On("UpdatePointValue", mock.Anything, bookID, mock.Anything).
		Return(errors.New(errors.ErrCodeDatabaseError, "write failed"))

	e := newTestEngine(books, exchanges, nil)
	_, err := e.RevalueBook(context.Background(), bookID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func TestRevalueBook_PublishFailureIsNotFatal(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionGood), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(0, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).Return(0, nil)
	books.On("UpdatePointValue", mock.Anything, bookID, mock.Anything).Return(nil)

	publisher := new(publisherMock)
	publisher.On("PublishBookValued", mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeExternalService, "broker unavailable"))

	e := newTestEngine(books, exchanges, nil, WithPublisher(publisher))
	_, err := e.RevalueBook(context.Background(), bookID)
	assert.NoError(t, err)
}

func TestComputeValue_CompletedCountFailureAssumesZero(t *testing.T) {
	bookID := common.NewID()
	books := new(bookRepoMock)
	exchanges := new(exchangeRepoMock)

	books.On("FindByID", mock.Anything, bookID).Return(testBook(bookID, catalog.ConditionExcellent), nil)
	books.On("CountAvailableByISBN", mock.Anything, mock.Anything).Return(1, nil)
	exchanges.On("CountForBook", mock.Anything, bookID, mock.Anything).Return(0, nil)
	exchanges.On("CountCompletedForBook", mock.Anything, bookID).
		Return(0, errors.New(errors.ErrCodeDatabaseError, "timeout"))

	e := newTestEngine(books, exchanges, nil)
	v, err := e.ComputeValue(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, 65, v.Points) // demand multiplier stays 1.0
}
