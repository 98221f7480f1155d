package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   string
		number bool
	}{
		{"string", `"123456789012345678901234567890"`, "123456789012345678901234567890", false},
		{"integer", `123456789012345678901234567890`, "123456789012345678901234567890", true},
		{"trailing zeros", `1.500`, "1.500", true},
		{"negative", `-42`, "-42", true},
		{"exponent", `1e18`, "1e18", true},
		{"decimal string", `"0.000001"`, "0.000001", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(c.input), &a))
			assert.Equal(t, c.want, a.String())
			assert.Equal(t, c.number, a.IsNumber())
			assert.True(t, a.IsSet())

			out, err := json.Marshal(a)
			require.NoError(t, err)
			assert.Equal(t, c.input, string(out))
		})
	}
}

func TestAmountRejectsOtherTypes(t *testing.T) {
	for _, input := range []string{`true`, `{}`, `[1]`, `null`} {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(input), &a), input)
	}
}

func TestAmountDecimal(t *testing.T) {
	d, err := AmountFromString("100000000").Decimal()
	require.NoError(t, err)
	assert.Equal(t, "100000000", d.String())

	d, err = AmountFromNumber(json.Number("2.50")).Decimal()
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("2.5")))

	_, err = AmountFromString("n/a").Decimal()
	assert.Error(t, err)

	_, err = Amount{}.Decimal()
	assert.Error(t, err)
}
