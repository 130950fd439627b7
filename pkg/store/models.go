package store

import (
	"time"

	"librarycatalog/pkg/domain"
)

// GORM model used for persistence.
type BookModel struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null;uniqueIndex:idx_books_title_author"`
	Author    string `gorm:"not null;uniqueIndex:idx_books_title_author"`
	Year      int
	Genre     string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName keeps the table name matching the original schema.
func (BookModel) TableName() string { return "books" }

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Year:      b.Year,
		Genre:     b.Genre,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:        m.ID,
		Title:     m.Title,
		Author:    m.Author,
		Year:      m.Year,
		Genre:     m.Genre,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
