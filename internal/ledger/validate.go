package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// centPlaces is the precision amounts are compared at.
const centPlaces = 2

var (
	ErrNoPayers          = errors.New("expense must have at least one payer")
	ErrNoShares          = errors.New("expense must have at least one share")
	ErrNonPositiveTotal  = errors.New("expense total must be positive")
	ErrNonPositiveAmount = errors.New("payer and share amounts must be positive")
	ErrUnbalancedExpense = errors.New("expense payers and shares must both sum to the total")
	ErrSubCentAmount     = errors.New("amounts cannot have more than two decimal places")
)

// ValidateExpense reports whether e is well formed: it has payers and shares,
// a positive total, positive whole-cent amounts, and payer and share sums that
// both equal the total exactly.
//
// The balance functions never call this; expenses are checked when written.
func ValidateExpense(e Expense) error {
	if len(e.Payers) == 0 {
		return ErrNoPayers
	}
	if len(e.Shares) == 0 {
		return ErrNoShares
	}
	if !e.Total.IsPositive() {
		return ErrNonPositiveTotal
	}
	if !wholeCents(e.Total) {
		return fmt.Errorf("%w: total %s", ErrSubCentAmount, e.Total)
	}

	paid := decimal.Zero
	for _, p := range e.Payers {
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: payer %s", ErrNonPositiveAmount, p.Member)
		}
		if !wholeCents(p.Amount) {
			return fmt.Errorf("%w: payer %s", ErrSubCentAmount, p.Member)
		}
		paid = paid.Add(p.Amount)
	}
	owed := decimal.Zero
	for _, s := range e.Shares {
		if !s.Amount.IsPositive() {
			return fmt.Errorf("%w: share %s", ErrNonPositiveAmount, s.Member)
		}
		if !wholeCents(s.Amount) {
			return fmt.Errorf("%w: share %s", ErrSubCentAmount, s.Member)
		}
		owed = owed.Add(s.Amount)
	}

	if !paid.Equal(e.Total) || !owed.Equal(e.Total) {
		return fmt.Errorf("%w: total %s, paid %s, owed %s", ErrUnbalancedExpense, e.Total, paid, owed)
	}
	return nil
}

func wholeCents(a decimal.Decimal) bool {
	return a.Equal(a.Round(centPlaces))
}
