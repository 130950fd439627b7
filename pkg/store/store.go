package store

import (
	"errors"

	"librarycatalog/pkg/domain"
)

// ErrDuplicateBook reports a (title, author) pair that already exists.
var ErrDuplicateBook = errors.New("book already exists")

// ErrBookInvalid reports a book row missing its required title or author.
var ErrBookInvalid = errors.New("title and author are required")

// Store defines persistence operations for the book catalog. Implementations
// own the uniqueness invariant on (title, author); callers never lock.
type Store interface {
	// CreateBook inserts a new record and returns it with its assigned ID.
	// Fails with ErrDuplicateBook when the (title, author) pair exists and
	// ErrBookInvalid when title or author is blank.
	CreateBook(domain.Book) (domain.Book, error)

	// FindOrCreateBook returns the existing record for the (title, author)
	// pair, inserting the given defaults when absent. The bool reports
	// whether a new record was created. Used for idempotent seeding.
	FindOrCreateBook(domain.Book) (domain.Book, bool, error)

	// ListBooks returns all records in insertion order.
	ListBooks() ([]domain.Book, error)

	// GetBook retrieves a record by ID.
	GetBook(id uint) (domain.Book, bool, error)

	// UpdateBook overwrites the stored row with the given record. The
	// uniqueness pair is not re-checked here; the storage index is the only
	// guard against an update colliding with an existing pair.
	UpdateBook(domain.Book) (domain.Book, error)

	// DeleteBook removes a record. The bool reports whether it existed.
	DeleteBook(id uint) (bool, error)

	// Close releases the underlying storage handle.
	Close() error
}
