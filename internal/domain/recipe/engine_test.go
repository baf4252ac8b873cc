package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice/internal/core/apperror"
	"slice/internal/core/id"
	"slice/internal/core/types"
)

func q(s string) types.Quantity { return types.MustQuantity(s) }

func TestComputeMaxCookable(t *testing.T) {
	flour, cheese, basil := id.New(), id.New(), id.New()

	tests := []struct {
		name  string
		lines []Line
		stock map[id.ID]types.Quantity
		want  int64
	}{
		{
			name: "no lines is unbounded",
			want: Unbounded,
		},
		{
			name:  "zero requirement does not constrain",
			lines: []Line{{ItemID: basil, RequiredQty: 0}},
			want:  Unbounded,
		},
		{
			name:  "single ingredient floors",
			lines: []Line{{ItemID: flour, RequiredQty: q("25")}},
			stock: map[id.ID]types.Quantity{flour: q("100")},
			want:  4,
		},
		{
			name:  "fractional remainder is dropped",
			lines: []Line{{ItemID: flour, RequiredQty: q("0.3")}},
			stock: map[id.ID]types.Quantity{flour: q("1")},
			want:  3,
		},
		{
			name: "minimum over lines",
			lines: []Line{
				{ItemID: flour, RequiredQty: q("200")},
				{ItemID: cheese, RequiredQty: q("150")},
				{ItemID: basil, RequiredQty: 0},
			},
			stock: map[id.ID]types.Quantity{flour: q("1000"), cheese: q("450")},
			want:  3,
		},
		{
			name:  "missing stock counts as zero",
			lines: []Line{{ItemID: flour, RequiredQty: q("1")}, {ItemID: cheese, RequiredQty: q("1")}},
			stock: map[id.ID]types.Quantity{flour: q("10")},
			want:  0,
		},
		{
			name:  "large stock is not capped",
			lines: []Line{{ItemID: flour, RequiredQty: q("1")}},
			stock: map[id.ID]types.Quantity{flour: q("5000")},
			want:  5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMaxCookable(tt.lines, tt.stock))
		})
	}
}

func TestComputeDeduction(t *testing.T) {
	flour, basil := id.New(), id.New()
	lines := []Line{
		{ItemID: flour, RequiredQty: q("0.25")},
		{ItemID: basil, RequiredQty: 0},
	}

	got, err := ComputeDeduction(lines, 3)
	require.NoError(t, err)
	assert.Equal(t, []Requirement{{ItemID: flour, Amount: q("0.75")}}, got)

	empty, err := ComputeDeduction(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestComputeDeduction_Overflow(t *testing.T) {
	dough := id.New()
	lines := []Line{{ItemID: dough, RequiredQty: q("25")}}

	_, err := ComputeDeduction(lines, 1<<60+1)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// zero-requirement lines never multiply
	got, err := ComputeDeduction([]Line{{ItemID: dough, RequiredQty: 0}}, 1<<62)
	require.NoError(t, err)
	assert.Empty(t, got)
}
