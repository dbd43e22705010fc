package money

import (
	"encoding/json"
	"testing"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]Amount{
		"129.99": 12999,
		"100":    10000,
		"0.5":    50,
		"-3.10":  -310,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("1.234")
	assert.Error(t, err)

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestFromFloat_AvoidsBinaryDrift(t *testing.T) {
	assert.Equal(t, Amount(1999), FromFloat(19.99))
	assert.Equal(t, Amount(30), FromFloat(0.1+0.2))
	assert.Equal(t, Amount(-250), FromFloat(-2.5))
}

func TestString(t *testing.T) {
	assert.Equal(t, "250.00", Amount(25000).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "$12.30", Amount(1230).Format("$"))
}

func TestTimes(t *testing.T) {
	assert.Equal(t, Amount(200), Amount(100).Times(2))
	assert.Equal(t, Amount(0), Amount(100).Times(0))
}

func TestUnmarshalJSON(t *testing.T) {
	var body struct {
		Minor   Amount `json:"minor"`
		Decimal Amount `json:"decimal"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"minor": 12999, "decimal": "129.99"}`), &body))
	assert.Equal(t, Amount(12999), body.Minor)
	assert.Equal(t, Amount(12999), body.Decimal)

	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"1.234"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`129.99`), &a))
}

func TestDecode(t *testing.T) {
	d := docstore.NewDecoder("products", docstore.Document{ID: "p1", Fields: docstore.Fields{
		"price":  int64(12999),
		"legacy": 129.99,
		"whole":  float64(100),
		"dec":    decimal.RequireFromString("1299.5"),
		"bad":    "12",
	}})

	a, err := Decode(d, "price")
	require.NoError(t, err)
	assert.Equal(t, Amount(12999), a)

	a, err = Decode(d, "legacy")
	require.NoError(t, err)
	assert.Equal(t, Amount(12999), a)

	a, err = Decode(d, "whole")
	require.NoError(t, err)
	assert.Equal(t, Amount(10000), a)

	a, err = Decode(d, "dec")
	require.NoError(t, err)
	assert.Equal(t, Amount(129950), a)

	_, err = Decode(d, "bad")
	assert.True(t, docstore.IsDecodeError(err))

	_, present, err := DecodeOptional(d, "profit")
	require.NoError(t, err)
	assert.False(t, present)
}
