package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Carts() CartRepository
	CartLines() CartLineRepository
	Orders() OrderRepository
	OrderLines() OrderLineRepository
	Catalog() CatalogRepository
	Ledger() LedgerRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
	// 読み取り専用トランザクション（ロック系メソッドは使わない）
	ReadOnly(ctx context.Context, fn func(r TxRepos) error) error
}
