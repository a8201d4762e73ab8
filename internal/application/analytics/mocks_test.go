package analytics

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/internal/domain/exchange"
	"github.com/shelfswap/shelfswap/internal/domain/forum"
	"github.com/shelfswap/shelfswap/internal/domain/history"
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

type historyRepoMock struct {
	mock.Mock
}

func (m *historyRepoMock) ListForBook(ctx context.Context, bookID common.ID) ([]*history.Event, error) {
	args := m.Called(ctx, bookID)
	if v := args.Get(0); v != nil {
		return v.([]*history.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type forumRepoMock struct {
	mock.Mock
}

func (m *forumRepoMock) ListForBook(ctx context.Context, bookID common.ID, excludeModerated bool, limit int) ([]*forum.Thread, error) {
	args := m.Called(ctx, bookID, excludeModerated, limit)
	if v := args.Get(0); v != nil {
		return v.([]*forum.Thread), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *forumRepoMock) CountThreads(ctx context.Context, bookID common.ID) (int, error) {
	args := m.Called(ctx, bookID)
	return args.Int(0), args.Error(1)
}

func (m *forumRepoMock) CountComments(ctx context.Context, bookID common.ID) (int, error) {
	args := m.Called(ctx, bookID)
	return args.Int(0), args.Error(1)
}

func (m *forumRepoMock) ListDistinctAuthors(ctx context.Context, bookID common.ID, source forum.AuthorSource) ([]common.UserID, error) {
	args := m.Called(ctx, bookID, source)
	if v := args.Get(0); v != nil {
		return v.([]common.UserID), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *forumRepoMock) ChapterCounts(ctx context.Context, bookID common.ID) ([]forum.ChapterCount, error) {
	args := m.Called(ctx, bookID)
	if v := args.Get(0); v != nil {
		return v.([]forum.ChapterCount), args.Error(1)
	}
	return nil, args.Error(1)
}
