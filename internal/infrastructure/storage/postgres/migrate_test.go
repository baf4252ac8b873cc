package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db:5432/slice?sslmode=disable", "pgx5://u:p@db:5432/slice?sslmode=disable"},
		{"postgresql://db/slice", "pgx5://db/slice"},
		{"pgx5://db/slice", "pgx5://db/slice"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrateURL(tt.in))
	}
}
