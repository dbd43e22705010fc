// internal/pkg/money/money.go
package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/shopspring/decimal"
)

// Amount is a currency value in minor units (cents)
type Amount int64

const minorUnitsExp = 2

var hundred = decimal.New(1, minorUnitsExp)

// Parse reads a decimal string such as "129.99" into minor units.
// More than two fractional digits is an error.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor := d.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimal places", s, minorUnitsExp)
	}
	return Amount(minor.IntPart()), nil
}

// FromFloat converts a legacy floating point major-unit value, rounding half away from zero
func FromFloat(f float64) Amount {
	return Amount(decimal.NewFromFloat(f).Mul(hundred).Round(0).IntPart())
}

// Times multiplies the amount by a quantity
func (a Amount) Times(qty int64) Amount {
	return a * Amount(qty)
}

// Decimal returns the amount in major units
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorUnitsExp)
}

// String formats the amount with two decimals, e.g. "250.00"
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorUnitsExp)
}

// Format prefixes the amount with a currency symbol
func (a Amount) Format(symbol string) string {
	return symbol + a.String()
}

// UnmarshalJSON accepts a number of minor units or a decimal string in major
// units, so 12999 and "129.99" decode to the same amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid amount %s: minor units must be a whole number", data)
	}
	*a = Amount(n)
	return nil
}

// Decode reads a required amount field from a document. Integers are minor units.
// Floating point and decimal values are legacy major-unit prices and are converted.
func Decode(d *docstore.Decoder, field string) (Amount, error) {
	if raw, ok := d.Raw(field); ok {
		switch v := raw.(type) {
		case float64:
			return FromFloat(v), nil
		case decimal.Decimal:
			return Amount(v.Mul(hundred).Round(0).IntPart()), nil
		}
	}
	n, err := d.Int64(field)
	return Amount(n), err
}

// DecodeOptional reads an amount field that may be absent, reporting presence
func DecodeOptional(d *docstore.Decoder, field string) (Amount, bool, error) {
	if !d.Has(field) {
		return 0, false, nil
	}
	a, err := Decode(d, field)
	return a, err == nil, err
}
