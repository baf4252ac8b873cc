package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_JSON(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &q))
	assert.Equal(t, Quantity(125_000), q)

	require.NoError(t, json.Unmarshal([]byte(`"1.50000"`), &q))
	assert.Equal(t, Quantity(15_000), q, "trailing zeros are not extra precision")

	require.NoError(t, json.Unmarshal([]byte(`2.5e3`), &q))
	assert.Equal(t, MustQuantity("2500"), q)

	out, err := json.Marshal(MustQuantity("-3.25"))
	require.NoError(t, err)
	assert.Equal(t, "-3.2500", string(out))
}

func TestQuantity_ParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"integer part past range", `1844674407370955.1617`, ErrQuantityOutOfRange},
		{"negative past range", `"-922337203685478"`, ErrQuantityOutOfRange},
		{"five decimals", `"0.00015"`, ErrQuantityPrecision},
		{"huge exponent", `1e30`, ErrQuantityOutOfRange},
		{"tiny exponent", `1e-30`, ErrQuantityPrecision},
		{"exponent past range", `9.3e14`, ErrQuantityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quantity(42)
			err := json.Unmarshal([]byte(tt.input), &q)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, Quantity(42), q, "target left untouched")
		})
	}

	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`"12abc"`), &q))
	assert.Error(t, json.Unmarshal([]byte(`""`), &q))
}

func TestQuantity_ParseBounds(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`922337203685477.5807`), &q))
	assert.Equal(t, Quantity(math.MaxInt64), q)

	require.NoError(t, json.Unmarshal([]byte(`"-922337203685477.5808"`), &q))
	assert.Equal(t, Quantity(math.MinInt64), q)
	assert.Equal(t, "-922337203685477.5808", q.String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantity_MulInt(t *testing.T) {
	tests := []struct {
		name    string
		q       Quantity
		n       int64
		want    Quantity
		wantErr bool
	}{
		{"portions", MustQuantity("25"), 3, MustQuantity("75"), false},
		{"zero", MustQuantity("25"), 0, 0, false},
		{"negative", MustQuantity("-2"), 3, MustQuantity("-6"), false},
		{"min int", Quantity(math.MinInt64), 1, Quantity(math.MinInt64), false},
		{"wraps past int64", MustQuantity("25"), 1<<60 + 1, 0, true},
		{"just past max", Quantity(math.MaxInt64/2 + 1), 2, 0, true},
		{"min times minus one", Quantity(math.MinInt64), -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.MulInt(tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrQuantityOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantity_WholeUnitsIn(t *testing.T) {
	tests := []struct {
		name  string
		stock Quantity
		per   Quantity
		want  int64
	}{
		{"exact", NewQuantityFromInt(100), NewQuantityFromInt(25), 4},
		{"floors", NewQuantityFromInt(99), NewQuantityFromInt(25), 3},
		{"fractional per", MustQuantity("1"), MustQuantity("0.3"), 3},
		{"empty stock", 0, NewQuantityFromInt(25), 0},
		{"negative stock", -5, NewQuantityFromInt(1), 0},
		{"zero per", NewQuantityFromInt(10), 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stock.WholeUnitsIn(tt.per))
		})
	}
}

func TestQuantity_Decimal(t *testing.T) {
	base, err := MustQuantity("1").MulDecimal(MustMoney("25000"))
	require.NoError(t, err)
	assert.Equal(t, Quantity(250_000_000), base)
	assert.Equal(t, "25000", base.Decimal().String())

	rounded, err := NewQuantityFromDecimal(MustMoney("2.50004"))
	require.NoError(t, err)
	assert.Equal(t, MustQuantity("2.5"), rounded)

	_, err = MustQuantity("1000000000").MulDecimal(MustMoney("1000000"))
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)

	assert.True(t, MustQuantity("3").Times(MustMoney("12.50")).Equal(MustMoney("37.5")))
}

func TestNewQuantityFromFloat64(t *testing.T) {
	assert.Equal(t, MustQuantity("10"), NewQuantityFromFloat64(10))
	assert.Equal(t, MustQuantity("0.3333"), NewQuantityFromFloat64(1.0/3))
	assert.Equal(t, Quantity(math.MaxInt64), NewQuantityFromFloat64(1e30))
	assert.Equal(t, Quantity(math.MinInt64), NewQuantityFromFloat64(-1e30))
}
