package store

import (
	"strings"
	"sync"
	"time"

	"librarycatalog/pkg/domain"
)

// MemoryStore keeps the catalog in-process. It enforces the same
// (title, author) uniqueness rule as the database-backed store and is the
// substitute used by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[uint]domain.Book
	pairs  map[string]uint // (title, author) -> book ID
	order  []uint
	nextID uint
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[uint]domain.Book),
		pairs: make(map[string]uint),
	}
}

func pairKey(title, author string) string {
	return title + "\x00" + author
}

// CreateBook inserts a record, rejecting duplicate (title, author) pairs.
func (m *MemoryStore) CreateBook(b domain.Book) (domain.Book, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return domain.Book{}, ErrBookInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(b.Title, b.Author)
	if _, exists := m.pairs[key]; exists {
		return domain.Book{}, ErrDuplicateBook
	}
	m.nextID++
	now := time.Now().UTC()
	b.ID = m.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	m.books[b.ID] = b
	m.pairs[key] = b.ID
	m.order = append(m.order, b.ID)
	return b, nil
}

// FindOrCreateBook returns the existing record for the pair or inserts the
// given defaults.
func (m *MemoryStore) FindOrCreateBook(b domain.Book) (domain.Book, bool, error) {
	m.mu.RLock()
	id, exists := m.pairs[pairKey(b.Title, b.Author)]
	if exists {
		existing := m.books[id]
		m.mu.RUnlock()
		return existing, false, nil
	}
	m.mu.RUnlock()
	created, err := m.CreateBook(b)
	if err != nil {
		return domain.Book{}, false, err
	}
	return created, true, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.order))
	for _, id := range m.order {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(id uint) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// UpdateBook overwrites the stored row. The pair index follows the new
// values without rejecting collisions, mirroring the database store.
func (m *MemoryStore) UpdateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.books[b.ID]
	if !ok {
		return b, nil
	}
	oldKey := pairKey(old.Title, old.Author)
	if m.pairs[oldKey] == b.ID {
		delete(m.pairs, oldKey)
	}
	b.CreatedAt = old.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	m.books[b.ID] = b
	newKey := pairKey(b.Title, b.Author)
	if _, taken := m.pairs[newKey]; !taken {
		m.pairs[newKey] = b.ID
	}
	return b, nil
}

// DeleteBook removes a book and reports whether it existed.
func (m *MemoryStore) DeleteBook(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return false, nil
	}
	delete(m.books, id)
	key := pairKey(b.Title, b.Author)
	if m.pairs[key] == id {
		delete(m.pairs, key)
	}
	filtered := m.order[:0]
	for _, item := range m.order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.order = filtered
	return true, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
