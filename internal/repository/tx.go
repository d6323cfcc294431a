package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the stores a transactional batch may touch.
type Repositories struct {
	Users  UserRepository
	Tokens TokenRepository
}

// TxManager runs a batch of writes atomically: either every write inside fn
// commits or none do.
type TxManager interface {
	Do(ctx context.Context, fn func(Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Users:  NewUserRepository(tx),
			Tokens: NewTokenRepository(tx),
		})
	})
}
