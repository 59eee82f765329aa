package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKey is the context key for the active transaction
type txKey struct{}

// GormTxManager runs functions inside a gorm transaction carried by the context
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new transaction manager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTx executes fn within a transaction. If ctx already carries one,
// fn joins it and the outer caller decides commit or rollback.
func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// conn returns the transaction in ctx or the base connection
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
