package service

import (
	"github.com/mmynk/splitmoney/internal/ledger"
	"github.com/mmynk/splitmoney/internal/storage"
)

// ledgerView is a group snapshot converted for the ledger engine.
//
// The member set is the current members plus anyone an expense still
// refers to, so removing a member never breaks the zero-sum of balances.
type ledgerView struct {
	snapshot *storage.GroupLedger
	members  []ledger.MemberID
	current  map[ledger.MemberID]bool
	expenses []ledger.Expense
}

func newLedgerView(snapshot *storage.GroupLedger) *ledgerView {
	v := &ledgerView{
		snapshot: snapshot,
		current:  make(map[ledger.MemberID]bool, len(snapshot.Members)),
		expenses: make([]ledger.Expense, len(snapshot.Expenses)),
	}

	seen := make(map[ledger.MemberID]bool)
	add := func(id ledger.MemberID) {
		if !seen[id] {
			seen[id] = true
			v.members = append(v.members, id)
		}
	}

	for _, m := range snapshot.Members {
		id := ledger.MemberID(m.UserID)
		v.current[id] = true
		add(id)
	}
	for i, e := range snapshot.Expenses {
		le := toLedgerExpense(e)
		v.expenses[i] = le
		for _, p := range le.Payers {
			add(p.Member)
		}
		for _, sh := range le.Shares {
			add(sh.Member)
		}
	}
	return v
}

func (v *ledgerView) balances() ledger.Balances {
	return ledger.ComputeBalances(v.members, v.expenses)
}
