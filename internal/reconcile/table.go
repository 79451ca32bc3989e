// Package reconcile implements the item clarification workflow: intake of
// extracted line items, the editable ledger table, and dispatch of the
// corrected rows to the expense and inventory ledgers.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/shopspring/decimal"
)

// Table errors.
var (
	ErrRowNotFound  = errors.New("row not found")
	ErrInvalidValue = errors.New("invalid value")
	ErrUnknownField = errors.New("unknown field")
)

// QuantityPolicy decides which value is held fixed when quantity changes.
type QuantityPolicy int

const (
	// HoldTotal keeps the total and derives the unit price.
	HoldTotal QuantityPolicy = iota
	// HoldUnitPrice keeps the unit price and derives the total.
	HoldUnitPrice
)

func (p QuantityPolicy) String() string {
	if p == HoldUnitPrice {
		return "hold-unit-price"
	}
	return "hold-total"
}

// ParseQuantityPolicy maps a configuration value onto a policy.
func ParseQuantityPolicy(s string) (QuantityPolicy, error) {
	switch s {
	case "hold-total", "total":
		return HoldTotal, nil
	case "hold-unit-price", "unit-price":
		return HoldUnitPrice, nil
	default:
		return HoldTotal, fmt.Errorf("unknown quantity policy %q", s)
	}
}

// Row is one editable line item. IDs are owned by the table and never
// leave the process.
type Row struct {
	Name        string
	Unit        string
	Description string
	Category    model.Ledger
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	ID          int
	// Flagged holds fields whose last edit was rejected.
	Flagged FieldSet
}

// Valid reports whether the row can be committed.
func (r Row) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && r.TotalPrice.IsPositive()
}

// Table is the working set of rows for one clarification.
type Table struct {
	rows   []Row
	nextID int
	policy QuantityPolicy
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithQuantityPolicy sets how quantity edits recompute prices.
func WithQuantityPolicy(p QuantityPolicy) TableOption {
	return func(t *Table) {
		t.policy = p
	}
}

// NewTable seeds a table from an extraction result. Rows keep the order of
// items; nothing is validated here.
func NewTable(items []model.ExtractedItem, opts ...TableOption) *Table {
	t := &Table{
		rows: make([]Row, 0, len(items)),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, item := range items {
		qty := item.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		category := item.SuggestedCategory
		if !category.IsValid() {
			category = model.LedgerExpense
		}
		t.rows = append(t.rows, Row{
			ID:          t.allocID(),
			Name:        item.Name,
			Unit:        item.Unit,
			Description: item.Description,
			Category:    category,
			Quantity:    qty,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	return t
}

func (t *Table) allocID() int {
	id := t.nextID
	t.nextID++
	return id
}

// Policy returns the table's quantity policy.
func (t *Table) Policy() QuantityPolicy {
	return t.policy
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in display order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row returns the row with the given id.
func (t *Table) Row(id int) (Row, bool) {
	i := t.index(id)
	if i < 0 {
		return Row{}, false
	}
	return t.rows[i], true
}

func (t *Table) index(id int) int {
	for i := range t.rows {
		if t.rows[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateField applies one user edit and recomputes the derived price.
// Rejected input leaves the row unchanged apart from flagging the field.
func (t *Table) UpdateField(id int, field Field, input string) error {
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}
	row := &t.rows[i]

	switch field {
	case FieldName:
		row.Name = input
	case FieldUnit:
		row.Unit = input
	case FieldQuantity:
		qty, err := parseQuantity(input)
		if err != nil {
			row.Flagged = row.Flagged.with(field)
			return err
		}
		row.Quantity = qty
		if t.policy == HoldUnitPrice {
			row.TotalPrice = row.UnitPrice.Mul(qty)
		} else {
			row.UnitPrice = perUnit(row.TotalPrice, qty)
		}
	case FieldTotalPrice:
		total, err := parseAmount(input)
		if err != nil {
			row.Flagged = row.Flagged.with(field)
			return err
		}
		row.TotalPrice = total
		row.UnitPrice = perUnit(total, row.Quantity)
	case FieldUnitPrice:
		price, err := parseAmount(input)
		if err != nil {
			row.Flagged = row.Flagged.with(field)
			return err
		}
		row.UnitPrice = price
		row.TotalPrice = price.Mul(row.Quantity)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	row.Flagged = row.Flagged.without(field)
	return nil
}

func perUnit(total, qty decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return total.Div(qty)
}

// ToggleCategory flips the row between the expense and inventory ledgers.
func (t *Table) ToggleCategory(id int) error {
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}
	t.rows[i].Category = t.rows[i].Category.Toggle()
	return nil
}

// AddRow appends a blank expense row and returns it.
func (t *Table) AddRow() Row {
	row := Row{
		ID:         t.allocID(),
		Category:   model.LedgerExpense,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.Zero,
		TotalPrice: decimal.Zero,
	}
	t.rows = append(t.rows, row)
	return row
}

// RemoveRow deletes a row. Remaining rows keep their ids.
func (t *Table) RemoveRow(id int) error {
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

// Total sums the row totals.
func (t *Table) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range t.rows {
		sum = sum.Add(r.TotalPrice)
	}
	return sum
}

// ValidRows returns the committable rows in their original order.
func (t *Table) ValidRows() []Row {
	var out []Row
	for _, r := range t.rows {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
