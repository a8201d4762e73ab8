package catalog

import (
	"context"

	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// BookRepository is the read/write contract the engine requires from the
// external store for book listings. Implementations live in
// internal/infrastructure/database/postgres/repositories.
type BookRepository interface {
	// FindByID loads a listing snapshot including its total historical
	// exchange count. Returns a not-found error when no listing exists.
	FindByID(ctx context.Context, id common.ID) (*Book, error)

	// CountAvailableByISBN counts currently-available listings sharing the
	// given ISBN, the subject listing included.
	CountAvailableByISBN(ctx context.Context, isbn string) (int, error)

	// CountAvailableByTitle counts currently-available listings whose title
	// contains the given substring, case-insensitively.
	CountAvailableByTitle(ctx context.Context, titleSubstring string) (int, error)

	// UpdatePointValue writes a freshly computed point value back onto the
	// listing. Single-field update; concurrent writers race and the last
	// write wins.
	UpdatePointValue(ctx context.Context, id common.ID, points int) error
}
