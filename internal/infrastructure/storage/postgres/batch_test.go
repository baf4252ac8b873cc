package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertSQL(t *testing.T) {
	got := insertSQL("transfer_lines", []string{"id", "transfer_id", "quantity"})
	assert.Equal(t, `INSERT INTO "transfer_lines" ("id", "transfer_id", "quantity") VALUES ($1, $2, $3)`, got)
}
