package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/repository"
)

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Pairs       repository.PairRepository
	Sessions    repository.SessionRepository
	Boards      repository.BoardRepository
	Corrections repository.CorrectionRepository
	Results     repository.ResultRepository
}

func newRepositories(q repository.DBTX) Repositories {
	return Repositories{
		Pairs:       repository.NewPairRepository(q),
		Sessions:    repository.NewSessionRepository(q),
		Boards:      repository.NewBoardRepository(q),
		Corrections: repository.NewCorrectionRepository(q),
		Results:     repository.NewResultRepository(q),
	}
}

// TxFunc runs with repositories bound to an open transaction.
type TxFunc func(repos Repositories) error

// WithTransaction runs fn in a transaction. It commits when fn returns nil and
// rolls back on error or panic; a panic is re-raised after the rollback.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(newRepositories(tx))
}
