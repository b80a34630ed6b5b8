package persistence

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey carries the active transaction through the context.
type txContextKey struct{}

// GormTxManager opens one database transaction per unit of work and makes it
// visible to every repository call inside the scope through the context.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a transaction manager on a database handle.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Do runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back otherwise.
func (m *GormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to the context, falling back
// to the plain handle outside any transaction scope.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
