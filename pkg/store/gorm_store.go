package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"librarycatalog/pkg/domain"
)

// GormStore implements Store using GORM over Postgres or SQLite.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. A DSN starting with
// postgres:// (or containing key=value connection fields) selects Postgres;
// anything else is treated as a SQLite file path, matching the original
// single-file books.db deployment.
func NewGormStore(dsn string) (*GormStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database DSN required")
	}
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(openDialector(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BookModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// CreateBook inserts a new record; the composite unique index rejects
// duplicate (title, author) pairs even under concurrent writers.
func (s *GormStore) CreateBook(b domain.Book) (domain.Book, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return domain.Book{}, ErrBookInvalid
	}
	now := time.Now().UTC()
	b.ID = 0
	b.CreatedAt = now
	b.UpdatedAt = now
	model := bookToModel(b)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Book{}, ErrDuplicateBook
		}
		return domain.Book{}, err
	}
	return bookFromModel(model), nil
}

// FindOrCreateBook returns the record for the (title, author) pair,
// inserting defaults when missing. A create racing another writer falls
// back to the row that won.
func (s *GormStore) FindOrCreateBook(b domain.Book) (domain.Book, bool, error) {
	existing, ok, err := s.getByPair(b.Title, b.Author)
	if err != nil {
		return domain.Book{}, false, err
	}
	if ok {
		return existing, false, nil
	}
	created, err := s.CreateBook(b)
	if err == nil {
		return created, true, nil
	}
	if errors.Is(err, ErrDuplicateBook) {
		existing, ok, err = s.getByPair(b.Title, b.Author)
		if err != nil {
			return domain.Book{}, false, err
		}
		if ok {
			return existing, false, nil
		}
	}
	return domain.Book{}, false, err
}

func (s *GormStore) getByPair(title, author string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "title = ? AND author = ?", title, author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// ListBooks returns all records ordered by id, which is insertion order.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	var models []BookModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// GetBook retrieves a record by ID.
func (s *GormStore) GetBook(id uint) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// UpdateBook overwrites the stored row. Uniqueness is not re-checked; if the
// new pair collides with another row, the index failure surfaces as a plain
// storage error rather than ErrDuplicateBook.
func (s *GormStore) UpdateBook(b domain.Book) (domain.Book, error) {
	b.UpdatedAt = time.Now().UTC()
	err := s.db.Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"title":      b.Title,
			"author":     b.Author,
			"year":       b.Year,
			"genre":      b.Genre,
			"updated_at": b.UpdatedAt,
		}).Error
	if err != nil {
		return domain.Book{}, err
	}
	return b, nil
}

// DeleteBook removes a record and reports whether it existed.
func (s *GormStore) DeleteBook(id uint) (bool, error) {
	tx := s.db.Delete(&BookModel{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
