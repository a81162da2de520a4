package ledger

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the magnitude at or below which a balance counts as settled.
var DefaultTolerance = decimal.New(1, -2) // 0.01

// Simplifier reduces balances to a short list of settlement transactions.
type Simplifier struct {
	// Tolerance absorbs rounding noise; balances within ±Tolerance are settled.
	Tolerance decimal.Decimal
}

// SimplifyDebts simplifies balances using DefaultTolerance.
func SimplifyDebts(balances Balances) []Transaction {
	return Simplifier{Tolerance: DefaultTolerance}.Simplify(balances)
}

// Simplify greedily matches the largest debtor with the largest creditor
// until one side is exhausted.
//
// Members within ±Tolerance start out settled. Each round pays
// min(|debt|, credit) from the debtor to the creditor and drops whichever
// party falls below Tolerance, so at most n-1 transactions are emitted for n
// unsettled members. Ties on balance are broken
// by member id, which makes the output deterministic.
func (s Simplifier) Simplify(balances Balances) []Transaction {
	tol := s.Tolerance.Abs()

	debtors := &partyQueue{}
	creditors := &partyQueue{}
	for id, bal := range balances {
		switch {
		case bal.LessThan(tol.Neg()):
			debtors.items = append(debtors.items, party{id: id, owed: bal.Neg()})
		case bal.GreaterThan(tol):
			creditors.items = append(creditors.items, party{id: id, owed: bal})
		}
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var txns []Transaction
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := decimal.Min(debtor.owed, creditor.owed)
		txns = append(txns, Transaction{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		debtor.owed = debtor.owed.Sub(amount)
		creditor.owed = creditor.owed.Sub(amount)

		if stillOwed(debtor.owed, tol) {
			heap.Push(debtors, debtor)
		}
		if stillOwed(creditor.owed, tol) {
			heap.Push(creditors, creditor)
		}
	}
	return txns
}

// stillOwed reports whether a residual stays in the queue. Only residuals below
// tol are dropped; a residual of exactly tol is a real cent still owed.
func stillOwed(residual, tol decimal.Decimal) bool {
	return residual.IsPositive() && residual.GreaterThanOrEqual(tol)
}

// party is one side of the matching, holding the magnitude still to settle.
type party struct {
	id   MemberID
	owed decimal.Decimal
}

// partyQueue is a max-heap on owed, ties broken by ascending id.
type partyQueue struct {
	items []party
}

func (q *partyQueue) Len() int { return len(q.items) }

func (q *partyQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if c := a.owed.Cmp(b.owed); c != 0 {
		return c > 0
	}
	return a.id < b.id
}

func (q *partyQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *partyQueue) Push(x any) { q.items = append(q.items, x.(party)) }

func (q *partyQueue) Pop() any {
	n := len(q.items)
	p := q.items[n-1]
	q.items = q.items[:n-1]
	return p
}

// Resolve maps transaction parties to display info. Transactions naming a
// member missing from directory are dropped.
func Resolve(txns []Transaction, directory map[MemberID]MemberInfo) []ResolvedTransaction {
	out := make([]ResolvedTransaction, 0, len(txns))
	for _, t := range txns {
		from, ok := directory[t.From]
		if !ok {
			continue
		}
		to, ok := directory[t.To]
		if !ok {
			continue
		}
		out = append(out, ResolvedTransaction{From: from, To: to, Amount: t.Amount})
	}
	return out
}
