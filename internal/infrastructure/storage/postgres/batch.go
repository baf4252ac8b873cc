package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// copyThreshold is the row count from which CopyRows switches from a batch of
// INSERTs to the COPY protocol.
const copyThreshold = 64

// BatchInserter writes document lines (transfer lines, purchase details) in one round trip.
type BatchInserter struct {
	txm *TxManager
}

// NewBatchInserter creates a batch inserter.
func NewBatchInserter(txm *TxManager) *BatchInserter {
	return &BatchInserter{txm: txm}
}

// CopyRows inserts rows into table. It must run inside a transaction.
func (b *BatchInserter) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	t := b.txm.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("insert %s: %w", table, ErrNoTransaction)
	}

	if len(rows) >= copyThreshold {
		if _, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy into %s: %w", table, err)
		}
		return nil
	}

	sql := insertSQL(table, columns)
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(sql, row...)
	}
	results := t.SendBatch(ctx, batch)
	defer results.Close()
	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	ident := pgx.Identifier{table}.Sanitize()
	cols := ""
	vals := ""
	for i, c := range columns {
		if i > 0 {
			cols += ", "
			vals += ", "
		}
		cols += pgx.Identifier{c}.Sanitize()
		vals += fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ident, cols, vals)
}
