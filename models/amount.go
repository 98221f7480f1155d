package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type amountForm uint8

const (
	amountUnset amountForm = iota
	amountString
	amountNumber
)

// Amount is a token amount that the peer sends either as a JSON string or as a
// JSON number. The original wire text is kept verbatim so that large integers
// never pass through float64.
type Amount struct {
	form amountForm
	text string
}

// AmountFromString builds an Amount that was sent as a JSON string.
func AmountFromString(s string) Amount {
	return Amount{form: amountString, text: s}
}

// AmountFromNumber builds an Amount that was sent as a JSON number.
func AmountFromNumber(n json.Number) Amount {
	return Amount{form: amountNumber, text: n.String()}
}

// String returns the amount exactly as it appeared on the wire.
func (a Amount) String() string {
	return a.text
}

// IsNumber reports whether the amount arrived as a JSON number.
func (a Amount) IsNumber() bool {
	return a.form == amountNumber
}

// IsSet reports whether the amount holds a value.
func (a Amount) IsSet() bool {
	return a.form != amountUnset
}

// Decimal parses the amount for arithmetic.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a.form == amountUnset {
		return decimal.Zero, fmt.Errorf("amount is not set")
	}
	return decimal.NewFromString(a.text)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("amount: empty value")
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountFromString(s)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*a = AmountFromNumber(n)
		return nil
	default:
		return fmt.Errorf("amount: expected string or number, got %s", data)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.form {
	case amountNumber:
		return []byte(a.text), nil
	case amountString:
		return json.Marshal(a.text)
	default:
		return jsonNull, nil
	}
}
