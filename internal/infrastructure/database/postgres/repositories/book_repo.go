package repositories

import (
	"context"

	"github.com/shelfswap/shelfswap/internal/domain/catalog"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// BookRepo implements catalog.BookRepository.
type BookRepo struct {
	db DB
}

// NewBookRepo constructs a BookRepo.
func NewBookRepo(db DB) *BookRepo {
	return &BookRepo{db: db}
}

const findBookSQL = `
SELECT b.id, b.title, b.author, b.genre, b.condition, COALESCE(b.isbn, ''),
       b.point_value, b.available, b.owner_id, b.created_at,
       (SELECT COUNT(*) FROM exchanges e WHERE e.book_id = b.id) AS exchange_count
FROM books b
WHERE b.id = $1`

// FindByID loads a listing snapshot including its total historical exchange
// count.
func (r *BookRepo) FindByID(ctx context.Context, id common.ID) (*catalog.Book, error) {
	var b catalog.Book
	err := r.db.QueryRow(ctx, findBookSQL, string(id)).Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.Condition, &b.ISBN,
		&b.PointValue, &b.Available, &b.OwnerID, &b.CreatedAt, &b.ExchangeCount,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.New(errors.ErrCodeBookNotFound, "book not found").WithDetail(id.String())
		}
		return nil, wrapQueryErr(err, "query book by id")
	}
	return &b, nil
}

// CountAvailableByISBN counts currently-available listings sharing the ISBN,
// the subject listing included.
func (r *BookRepo) CountAvailableByISBN(ctx context.Context, isbn string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE isbn = $1 AND available`, isbn).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count available books by isbn")
	}
	return n, nil
}

// CountAvailableByTitle counts currently-available listings whose title
// contains the substring, case-insensitively.
func (r *BookRepo) CountAvailableByTitle(ctx context.Context, titleSubstring string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE title ILIKE '%' || $1 || '%' AND available`,
		titleSubstring).Scan(&n)
	if err != nil {
		return 0, wrapQueryErr(err, "count available books by title")
	}
	return n, nil
}

// UpdatePointValue writes a computed point value back onto the listing.
func (r *BookRepo) UpdatePointValue(ctx context.Context, id common.ID, points int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books SET point_value = $2, updated_at = NOW() WHERE id = $1`,
		string(id), points)
	if err != nil {
		return wrapQueryErr(err, "update book point value")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeBookNotFound, "book not found").WithDetail(id.String())
	}
	return nil
}
