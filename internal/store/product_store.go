package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrConflict is returned when (name, version) already exists.
	ErrConflict = errors.New("product with this name and version already exists")
	// ErrStorage wraps any failure of the underlying database.
	ErrStorage = errors.New("storage failure")
)

// ProductStore persists the catalog in a single table.
type ProductStore struct {
	db *gorm.DB
}

// Open connects to the SQLite file at path and creates the products table if it is missing.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writers queued instead of failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Product{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// List returns every product in insertion order.
func (s *ProductStore) List(ctx context.Context) ([]model.Product, error) {
	list := make([]model.Product, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("%w: list products: %v", ErrStorage, err)
	}
	return list, nil
}

// Insert creates a product. Callers validate the fields; the unique index decides duplicates.
func (s *ProductStore) Insert(ctx context.Context, name, owner, version string, price int64) (model.Product, error) {
	p := model.Product{
		Name:    name,
		Owner:   owner,
		Version: version,
		Price:   price,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errorsLikeUnique(err) {
			return model.Product{}, ErrConflict
		}
		return model.Product{}, fmt.Errorf("%w: insert product: %v", ErrStorage, err)
	}
	return p, nil
}

// DeleteByName removes every version of every product whose name matches case-insensitively
// and reports how many rows went away.
func (s *ProductStore) DeleteByName(ctx context.Context, name string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Delete(&model.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: delete products: %v", ErrStorage, res.Error)
	}
	return res.RowsAffected, nil
}

func errorsLikeUnique(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
