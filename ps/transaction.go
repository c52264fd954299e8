package ps

import (
	"context"
	"errors"
)

var (
	ErrTransactionActive = errors.New("transaction already active")
	ErrNoTransaction     = errors.New("no active transaction")
)

// Begin starts a transaction on the session. Transactions do not nest.
func (connection *Connection) Begin(ctx context.Context) error {
	if err := connection.Verify(); err != nil {
		return err
	}
	if connection.tx != nil {
		return ErrTransactionActive
	}

	tx, err := connection.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	connection.tx = tx
	return nil
}

func (connection *Connection) Commit() error {
	if err := connection.Verify(); err != nil {
		return err
	}
	if connection.tx == nil {
		return ErrNoTransaction
	}

	tx := connection.tx
	connection.tx = nil
	return tx.Commit()
}

func (connection *Connection) Rollback() error {
	if err := connection.Verify(); err != nil {
		return err
	}
	if connection.tx == nil {
		return ErrNoTransaction
	}

	tx := connection.tx
	connection.tx = nil
	return tx.Rollback()
}

func (connection *Connection) InTransaction() bool {
	return connection.tx != nil
}
