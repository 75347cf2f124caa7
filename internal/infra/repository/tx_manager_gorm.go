package repository

import (
	"context"
	"database/sql"

	repo "wheats/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users      repo.UserRepository
	carts      repo.CartRepository
	cartLines  repo.CartLineRepository
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	catalog    repo.CatalogRepository
	ledger     repo.LedgerRepository
}

func (r *txReposGorm) Users() repo.UserRepository           { return r.users }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) CartLines() repo.CartLineRepository   { return r.cartLines }
func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) Catalog() repo.CatalogRepository      { return r.catalog }
func (r *txReposGorm) Ledger() repo.LedgerRepository        { return r.ledger }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
}

func (tm *TxManagerGorm) ReadOnly(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	}, &sql.TxOptions{ReadOnly: true})
}

// repoはtxを持ったDBで作り直す
func newTxRepos(tx *gorm.DB) *txReposGorm {
	return &txReposGorm{
		users:      NewUserGormRepository(tx),
		carts:      NewCartGormRepository(tx),
		cartLines:  NewCartLineGormRepository(tx),
		orders:     NewOrderGormRepository(tx),
		orderLines: NewOrderLineGormRepository(tx),
		catalog:    NewCatalogGormRepository(tx),
		ledger:     NewLedgerGormRepository(tx),
	}
}
