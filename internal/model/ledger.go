// Package model defines the data types shared by the reconciliation core,
// the backend client and the terminal views.
package model

import "strings"

// Ledger is the downstream record store a row is committed into.
type Ledger string

// Ledger constants.
const (
	LedgerExpense   Ledger = "expense"
	LedgerInventory Ledger = "inventory"
)

// Toggle returns the other ledger. The flip is binary.
func (l Ledger) Toggle() Ledger {
	if l == LedgerInventory {
		return LedgerExpense
	}
	return LedgerInventory
}

// IsValid reports whether l is one of the two known ledgers.
func (l Ledger) IsValid() bool {
	return l == LedgerExpense || l == LedgerInventory
}

// String implements fmt.Stringer.
func (l Ledger) String() string {
	return string(l)
}

// ParseLedger maps a backend category suggestion onto a ledger.
// Anything other than inventory lands in the expense log, which is also
// where the backend routes unknown categories.
func ParseLedger(s string) Ledger {
	if strings.EqualFold(strings.TrimSpace(s), string(LedgerInventory)) {
		return LedgerInventory
	}
	return LedgerExpense
}
