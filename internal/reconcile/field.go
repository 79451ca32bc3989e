package reconcile

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sakhi/internal/common"
	"github.com/shopspring/decimal"
)

// Field identifies one editable column of a row.
type Field int

// Field constants, in display order.
const (
	FieldName Field = iota
	FieldQuantity
	FieldTotalPrice
	FieldUnitPrice
	FieldUnit
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldQuantity, FieldTotalPrice, FieldUnitPrice, FieldUnit}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldQuantity:
		return "quantity"
	case FieldTotalPrice:
		return "total_price"
	case FieldUnitPrice:
		return "unit_price"
	case FieldUnit:
		return "unit"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Numeric reports whether the field holds a decimal value.
func (f Field) Numeric() bool {
	return f == FieldQuantity || f == FieldTotalPrice || f == FieldUnitPrice
}

// FieldSet is a small bitset of fields.
type FieldSet uint8

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return s&(1<<uint(f)) != 0
}

// Empty reports whether no field is set.
func (s FieldSet) Empty() bool {
	return s == 0
}

func (s FieldSet) with(f Field) FieldSet {
	return s | 1<<uint(f)
}

func (s FieldSet) without(f Field) FieldSet {
	return s &^ (1 << uint(f))
}

// parseAmount reads a non-negative money amount. Blank input clears the
// amount to zero.
func parseAmount(input string) (decimal.Decimal, error) {
	s := common.StripCurrency(input)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, strings.TrimSpace(input))
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount cannot be negative", ErrInvalidValue)
	}
	return d, nil
}

// parseQuantity reads a strictly positive quantity.
func parseQuantity(input string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a quantity", ErrInvalidValue, strings.TrimSpace(input))
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidValue)
	}
	return d, nil
}
