package transaction

import "context"

// Tx は複数リポジトリ操作をまとめる境界
// アプリケーション層がsqlxなどのインフラ実装を知らずに済むための抽象
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はTxの開始点
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
