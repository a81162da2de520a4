package ledger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertTxn(t *testing.T, want, got Transaction) {
	t.Helper()
	assert.Equal(t, want.From, got.From)
	assert.Equal(t, want.To, got.To)
	assert.True(t, want.Amount.Equal(got.Amount), "amount: want %s, got %s", want.Amount, got.Amount)
}

// assertSettles checks the properties every simplification must have.
func assertSettles(t *testing.T, balances Balances, txns []Transaction) {
	t.Helper()

	unsettled := 0
	for _, b := range balances {
		if b.Abs().GreaterThan(DefaultTolerance) {
			unsettled++
		}
	}
	if unsettled > 0 {
		assert.LessOrEqual(t, len(txns), unsettled-1, "at most n-1 transactions")
	} else {
		assert.Empty(t, txns)
	}

	for _, txn := range txns {
		assert.NotEqual(t, txn.From, txn.To, "self-settlement")
		assert.True(t, txn.Amount.GreaterThanOrEqual(DefaultTolerance), "amount %s below tolerance", txn.Amount)
	}

	for id, b := range balances.Apply(txns) {
		assert.True(t, b.Abs().LessThanOrEqual(DefaultTolerance), "%s left with %s", id, b)
	}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []Transaction
	}{
		{
			name:     "one creditor two debtors",
			balances: Balances{"A": d("60"), "B": d("-30"), "C": d("-30")},
			want: []Transaction{
				{From: "B", To: "A", Amount: d("30")},
				{From: "C", To: "A", Amount: d("30")},
			},
		},
		{
			name:     "one debtor two creditors",
			balances: Balances{"A": d("50"), "B": d("50"), "C": d("-100")},
			want: []Transaction{
				{From: "C", To: "A", Amount: d("50")},
				{From: "C", To: "B", Amount: d("50")},
			},
		},
		{
			name:     "noise within tolerance",
			balances: Balances{"A": d("0.005"), "B": d("-0.005"), "C": d("0")},
			want:     nil,
		},
		{
			name:     "exactly one cent is settled",
			balances: Balances{"A": d("0.01"), "B": d("-0.01")},
			want:     nil,
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: Balances{"A": d("70"), "B": d("30"), "C": d("-80"), "D": d("-20")},
			want: []Transaction{
				{From: "C", To: "A", Amount: d("70")},
				{From: "D", To: "B", Amount: d("20")},
				{From: "C", To: "B", Amount: d("10")},
			},
		},
		{
			name: "one-cent residuals are still paid",
			balances: Balances{
				"A": d("1.01"), "B": d("1.01"), "C": d("1.01"),
				"D": d("-1.00"), "E": d("-1.00"), "F": d("-1.03"),
			},
			want: []Transaction{
				{From: "F", To: "A", Amount: d("1.01")},
				{From: "D", To: "B", Amount: d("1.00")},
				{From: "E", To: "C", Amount: d("1.00")},
				{From: "F", To: "B", Amount: d("0.01")},
				{From: "F", To: "C", Amount: d("0.01")},
			},
		},
		{
			name:     "empty",
			balances: Balances{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assertTxn(t, tt.want[i], got[i])
			}
			assertSettles(t, tt.balances, got)
		})
	}
}

func TestSimplifyDebts_Deterministic(t *testing.T) {
	balances := Balances{
		"carol": d("-25"), "alice": d("-25"), "bob": d("-25"),
		"dave": d("25"), "erin": d("25"), "frank": d("25"),
	}

	first := SimplifyDebts(balances)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, SimplifyDebts(balances))
	}

	// Equal balances are matched in id order
	require.Len(t, first, 3)
	assertTxn(t, Transaction{From: "alice", To: "dave", Amount: d("25")}, first[0])
	assertTxn(t, Transaction{From: "bob", To: "erin", Amount: d("25")}, first[1])
	assertTxn(t, Transaction{From: "carol", To: "frank", Amount: d("25")}, first[2])
}

func TestSimplifier_ZeroTolerance(t *testing.T) {
	s := Simplifier{Tolerance: decimal.Zero}
	got := s.Simplify(Balances{"A": d("0.01"), "B": d("-0.01")})

	require.Len(t, got, 1)
	assert.Equal(t, MemberID("B"), got[0].From)
	assert.True(t, d("0.01").Equal(got[0].Amount))
}

func TestSimplifyDebts_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(12)
		members := make([]MemberID, n)
		for i := range members {
			members[i] = MemberID(fmt.Sprintf("m%02d", i))
		}

		// Whole-unit shares keep every balance either zero or well outside tolerance
		count := 1 + rng.Intn(10)
		expenses := make([]Expense, 0, count)
		for e := 0; e < count; e++ {
			sharers := members[:1+rng.Intn(n)]
			total := decimal.NewFromInt(int64(len(sharers) * (1 + rng.Intn(500))))
			payer := members[rng.Intn(n)]
			shares, err := EqualShares(total, sharers)
			require.NoError(t, err)
			expenses = append(expenses, Expense{
				Total:  total,
				Payers: []Payer{{Member: payer, Amount: total}},
				Shares: shares,
			})
		}

		balances := ComputeBalances(members, expenses)
		assert.True(t, balances.Sum().IsZero(), "round %d: balances sum to %s", round, balances.Sum())
		assertSettles(t, balances, SimplifyDebts(balances))
	}
}

func TestSimplifyDebts_RandomCents(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 300; round++ {
		n := 2 + rng.Intn(10)
		members := make([]MemberID, n)
		for i := range members {
			members[i] = MemberID(fmt.Sprintf("m%02d", i))
		}

		count := 1 + rng.Intn(12)
		expenses := make([]Expense, 0, count)
		for e := 0; e < count; e++ {
			// Totals in cents that rarely divide evenly, e.g. 10.00 over 3
			cents := int64(100 + rng.Intn(50000))
			total := decimal.New(cents, -2)

			rng.Shuffle(n, func(i, j int) { members[i], members[j] = members[j], members[i] })
			sharers := members[:1+rng.Intn(n)]
			shares, err := EqualShares(total, sharers)
			require.NoError(t, err)

			payers := randomPayers(rng, members, cents)

			expense := Expense{Total: total, Payers: payers, Shares: shares}
			require.NoError(t, ValidateExpense(expense), "round %d", round)
			expenses = append(expenses, expense)
		}

		balances := ComputeBalances(members, expenses)
		require.True(t, balances.Sum().IsZero(), "round %d: balances sum to %s", round, balances.Sum())
		assertSettles(t, balances, SimplifyDebts(balances))
	}
}

// randomPayers splits cents between one to three distinct payers.
func randomPayers(rng *rand.Rand, members []MemberID, cents int64) []Payer {
	k := 1 + rng.Intn(3)
	if k > len(members) || int64(k) > cents {
		k = 1
	}
	ids := make([]MemberID, len(members))
	copy(ids, members)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	payers := make([]Payer, k)
	left := cents
	for i := 0; i < k; i++ {
		amount := left
		if i < k-1 {
			// leave at least one cent for each remaining payer
			amount = 1 + rng.Int63n(left-int64(k-1-i))
		}
		left -= amount
		payers[i] = Payer{Member: ids[i], Amount: decimal.New(amount, -2)}
	}
	return payers
}

func TestResolve(t *testing.T) {
	directory := map[MemberID]MemberInfo{
		"A": {ID: "A", Name: "Alice"},
		"B": {ID: "B", Name: "Bob"},
	}
	txns := []Transaction{
		{From: "B", To: "A", Amount: d("30")},
		{From: "C", To: "A", Amount: d("30")}, // C left the group
	}

	got := Resolve(txns, directory)

	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].From.Name)
	assert.Equal(t, "Alice", got[0].To.Name)
	assert.True(t, d("30").Equal(got[0].Amount))
}
