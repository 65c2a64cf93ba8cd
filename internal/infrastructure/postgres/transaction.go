package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
)

// sqlxTx はsqlx.Txをtransaction.Txとして公開する
type sqlxTx struct {
	tx *sqlx.Tx
}

func (t *sqlxTx) Commit() error   { return t.tx.Commit() }
func (t *sqlxTx) Rollback() error { return t.tx.Rollback() }

// TxManager はsqlx.DB上でトランザクションを開始する
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlxTx{tx: tx}, nil
}

// unwrapTx はリポジトリ実装がSQLを発行するためにsqlx.Txを取り出す
// このパッケージのTxManager以外が生成したTxにはnilを返す
func unwrapTx(tx transaction.Tx) *sqlx.Tx {
	if w, ok := tx.(*sqlxTx); ok {
		return w.tx
	}
	return nil
}

var _ transaction.Manager = (*TxManager)(nil)
