package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// MemberBalance is the balance breakdown for one group member.
type MemberBalance struct {
	Member    MemberID
	TotalPaid decimal.Decimal // across all expenses, settlements included
	TotalOwed decimal.Decimal
	Net       decimal.Decimal // TotalPaid - TotalOwed
}

// ComputeBalances returns the net balance of every member.
//
// Each payer contribution is added to the payer and each share is subtracted
// from the ower. Every member in members appears in the result, starting at
// zero. Payers and shares naming a member outside members are ignored.
func ComputeBalances(members []MemberID, expenses []Expense) Balances {
	tally := tally(members, expenses)

	balances := make(Balances, len(tally))
	for id, bal := range tally {
		balances[id] = bal.Net
	}
	return balances
}

// Tally returns the paid/owed/net breakdown of every member, sorted by member id.
func Tally(members []MemberID, expenses []Expense) []MemberBalance {
	tally := tally(members, expenses)

	out := make([]MemberBalance, 0, len(tally))
	for _, bal := range tally {
		out = append(out, *bal)
	}
	slices.SortFunc(out, func(a, b MemberBalance) int {
		return strings.Compare(string(a.Member), string(b.Member))
	})
	return out
}

func tally(members []MemberID, expenses []Expense) map[MemberID]*MemberBalance {
	balances := make(map[MemberID]*MemberBalance, len(members))
	for _, m := range members {
		balances[m] = &MemberBalance{Member: m}
	}

	for _, e := range expenses {
		for _, p := range e.Payers {
			if bal, ok := balances[p.Member]; ok {
				bal.TotalPaid = bal.TotalPaid.Add(p.Amount)
			}
		}
		for _, s := range e.Shares {
			if bal, ok := balances[s.Member]; ok {
				bal.TotalOwed = bal.TotalOwed.Add(s.Amount)
			}
		}
	}

	for _, bal := range balances {
		bal.Net = bal.TotalPaid.Sub(bal.TotalOwed)
	}
	return balances
}

// Sum returns the sum of all balances. It is zero when every expense is
// internally balanced.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range b {
		sum = sum.Add(v)
	}
	return sum
}

// Apply returns a copy of b with every transaction applied: the debtor's
// balance rises by the amount and the creditor's falls by it.
func (b Balances) Apply(txns []Transaction) Balances {
	out := make(Balances, len(b))
	for id, v := range b {
		out[id] = v
	}
	for _, t := range txns {
		out[t.From] = out[t.From].Add(t.Amount)
		out[t.To] = out[t.To].Sub(t.Amount)
	}
	return out
}
