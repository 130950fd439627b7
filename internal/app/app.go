package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"librarycatalog/pkg/ai"
	"librarycatalog/pkg/domain"
	"librarycatalog/pkg/store"
)

// ErrTitleAuthorRequired reports a create request missing its required fields.
var ErrTitleAuthorRequired = errors.New("Title and author are required")

// noGenerationFallback is returned to the client when the upstream reply
// does not carry a generation. The exact wording is part of the contract.
const noGenerationFallback = "No response generated or API response structure changed"

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Generator   ai.Generator
}

// App is the core application service wiring together storage and chat logic.
type App struct {
	store     store.Store
	generator ai.Generator
}

// New constructs the application with database-backed catalog storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("text generator required")
	}
	return &App{
		store:     dataStore,
		generator: cfg.Generator,
	}, nil
}

// Store exposes the underlying store for lifecycle management.
func (a *App) Store() store.Store { return a.store }

// CreateBook validates required fields and inserts a new catalog entry.
func (a *App) CreateBook(b domain.Book) (domain.Book, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return domain.Book{}, ErrTitleAuthorRequired
	}
	return a.store.CreateBook(b)
}

// ListBooks returns the whole catalog in insertion order.
func (a *App) ListBooks() ([]domain.Book, error) {
	return a.store.ListBooks()
}

// GetBook retrieves a book by ID.
func (a *App) GetBook(id uint) (domain.Book, bool, error) {
	return a.store.GetBook(id)
}

// UpdateBook applies a partial update: a patch field overwrites the stored
// value only when it is a non-empty string or a non-zero year, so falsy
// values keep the previous value. An empty patch is a no-op that still
// touches updatedAt, matching the original behavior.
func (a *App) UpdateBook(id uint, patch domain.BookPatch) (domain.Book, bool, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil || !ok {
		return domain.Book{}, ok, err
	}
	if patch.Title != "" {
		book.Title = patch.Title
	}
	if patch.Author != "" {
		book.Author = patch.Author
	}
	if patch.Year != 0 {
		book.Year = patch.Year
	}
	if patch.Genre != "" {
		book.Genre = patch.Genre
	}
	updated, err := a.store.UpdateBook(book)
	if err != nil {
		return domain.Book{}, true, err
	}
	return updated, true, nil
}

// DeleteBook removes a book by ID and reports whether it existed.
func (a *App) DeleteBook(id uint) (bool, error) {
	return a.store.DeleteBook(id)
}

// SeedCatalog idempotently inserts the baseline catalog entries. Pairs
// already present are found, not reinserted.
func (a *App) SeedCatalog() error {
	created := 0
	for _, book := range store.SeedBooks {
		_, isNew, err := a.store.FindOrCreateBook(book)
		if err != nil {
			return fmt.Errorf("seed %q: %w", book.Title, err)
		}
		if isNew {
			created++
		}
	}
	slog.Info("catalog seeded", "created", created, "total", len(store.SeedBooks))
	return nil
}

// Converse forwards a user message, with optional book context, to the text
// generation upstream and normalizes the reply. A malformed upstream shape
// yields the fixed fallback string rather than an error; transport and HTTP
// failures surface to the caller untouched.
func (a *App) Converse(ctx context.Context, message string, book *domain.BookContext) (string, error) {
	prompt := message
	if book != nil {
		prompt = fmt.Sprintf("%s Book details: Title: %s, Author: %s, Published: %d, Genre: %s. ",
			message, book.Title, book.Author, book.Year, book.Genre)
	}
	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrNoGeneration) {
			return noGenerationFallback, nil
		}
		return "", err
	}
	return text, nil
}
