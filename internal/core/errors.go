package core

import (
	"errors"
	"fmt"
)

// Error taxonomy of the ledger. Callers match with errors.Is; concrete failures
// wrap one of these with fmt.Errorf("...: %w").
var (
	ErrValidation           = errors.New("validation error")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyPaid          = errors.New("bill already paid")
	ErrReservedNameConflict = errors.New("reserved category name")
	ErrPersistence          = errors.New("persistence error")

	ErrBudgetExceeded   = errors.New("category budget exceeded, confirmation required")
	ErrNameConflict     = errors.New("name already exists")
	ErrCategoryInUse    = errors.New("category has expenses")
	ErrReservedCategory = errors.New("reserved category")
	ErrLinkedExpense    = errors.New("expense is linked to a bill")
)

// Persistence marks err as a store failure. op names the failed statement.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// NotFound builds an ErrNotFound for the given kind and id.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
