package ledger

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

var ErrNoMembers = errors.New("must have at least one member to split between")

// EqualShares splits total equally between members, to the cent.
//
// The total is divided in whole cents; leftover cents go one each to the
// first members in id order, so the shares always add up to the total.
// Duplicate member ids are collapsed.
func EqualShares(total decimal.Decimal, members []MemberID) ([]Share, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	ids := slices.Clone(members)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	cents := total.Shift(centPlaces).Round(0).IntPart()
	n := int64(len(ids))
	base, remainder := cents/n, cents%n

	shares := make([]Share, len(ids))
	for i, id := range ids {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = Share{Member: id, Amount: decimal.New(c, -centPlaces)}
	}
	return shares, nil
}
