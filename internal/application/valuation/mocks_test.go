package valuation

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	appraisal "github.com/shelfswap/shelfswap/internal/intelligence/appraisal_gpt"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

type bookRepoMock struct {
	mock.Mock
}

func (m *bookRepoMock) FindByID(ctx context.Context, id common.ID) (*catalog.Book, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*catalog.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *bookRepoMock) CountAvailableByISBN(ctx context.Context, isbn string) (int, error) {
	args := m.Called(ctx, isbn)
	return args.Int(0), args.Error(1)
}

func (m *bookRepoMock) CountAvailableByTitle(ctx context.Context, titleSubstring string) (int, error) {
	args := m.Called(ctx, titleSubstring)
	return args.Int(0), args.Error(1)
}

func (m *bookRepoMock) UpdatePointValue(ctx context.Context, id common.ID, points int) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

type exchangeRepoMock struct {
	mock.Mock
}

func (m *exchangeRepoMock) CountForBook(ctx context.Context, bookID common.ID, createdAfter time.Time) (int, error) {
	args := m.Called(ctx, bookID, createdAfter)
	return args.Int(0), args.Error(1)
}

func (m *exchangeRepoMock) CountCompletedForBook(ctx context.Context, bookID common.ID) (int, error) {
	args := m.Called(ctx, bookID)
	return args.Int(0), args.Error(1)
}

func (m *exchangeRepoMock) ListForBook(ctx context.Context, bookID common.ID, statuses []exchange.Status, rng common.DateRange) ([]*exchange.Exchange, error) {
	args := m.Called(ctx, bookID, statuses, rng)
	if v := args.Get(0); v != nil {
		return v.([]*exchange.Exchange), args.Error(1)
	}
	return nil, args.Error(1)
}

type appraiserMock struct {
	mock.Mock
}

func (m *appraiserMock) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *appraiserMock) SuggestPoints(ctx context.Context, in *appraisal.PromptInput) (*appraisal.Suggestion, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*appraisal.Suggestion), args.Error(1)
	}
	return nil, args.Error(1)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishBookValued(ctx context.Context, v *Valuation) error {
	return m.Called(ctx, v).Error(0)
}

type cacheMock struct {
	mock.Mock
}

func (m *cacheMock) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}
