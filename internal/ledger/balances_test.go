package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBalances(t *testing.T) {
	members := []MemberID{"A", "B", "C"}
	expenses := []Expense{
		{
			ID:     "dinner",
			Total:  d("90"),
			Payers: []Payer{{Member: "A", Amount: d("90")}},
			Shares: []Share{
				{Member: "A", Amount: d("30")},
				{Member: "B", Amount: d("30")},
				{Member: "C", Amount: d("30")},
			},
		},
	}

	balances := ComputeBalances(members, expenses)

	require.Len(t, balances, 3)
	assert.True(t, d("60").Equal(balances["A"]), "A = %s", balances["A"])
	assert.True(t, d("-30").Equal(balances["B"]), "B = %s", balances["B"])
	assert.True(t, d("-30").Equal(balances["C"]), "C = %s", balances["C"])
	assert.True(t, balances.Sum().IsZero())

	txns := SimplifyDebts(balances)
	require.Len(t, txns, 2)
	assertTxn(t, Transaction{From: "B", To: "A", Amount: d("30")}, txns[0])
	assertTxn(t, Transaction{From: "C", To: "A", Amount: d("30")}, txns[1])
}

func TestComputeBalances_MultiplePayers(t *testing.T) {
	members := []MemberID{"A", "B", "C"}
	expenses := []Expense{
		{
			Total:  d("100"),
			Payers: []Payer{{Member: "A", Amount: d("70")}, {Member: "B", Amount: d("30")}},
			Shares: []Share{{Member: "B", Amount: d("50")}, {Member: "C", Amount: d("50")}},
		},
		{
			Total:  d("20.50"),
			Payers: []Payer{{Member: "C", Amount: d("20.50")}},
			Shares: []Share{{Member: "A", Amount: d("10.25")}, {Member: "C", Amount: d("10.25")}},
		},
	}

	balances := ComputeBalances(members, expenses)

	assert.True(t, d("59.75").Equal(balances["A"]), "A = %s", balances["A"])
	assert.True(t, d("-20").Equal(balances["B"]), "B = %s", balances["B"])
	assert.True(t, d("-39.75").Equal(balances["C"]), "C = %s", balances["C"])
	assert.True(t, balances.Sum().IsZero())
}

func TestComputeBalances_IgnoresUnknownMembers(t *testing.T) {
	expenses := []Expense{
		{
			Total:  d("40"),
			Payers: []Payer{{Member: "gone", Amount: d("40")}},
			Shares: []Share{{Member: "A", Amount: d("20")}, {Member: "gone", Amount: d("20")}},
		},
	}

	balances := ComputeBalances([]MemberID{"A", "B"}, expenses)

	require.Len(t, balances, 2)
	assert.True(t, d("-20").Equal(balances["A"]))
	assert.True(t, balances["B"].IsZero())
	_, ok := balances["gone"]
	assert.False(t, ok)
}

func TestComputeBalances_UnbalancedExpenseLeavesResidual(t *testing.T) {
	expenses := []Expense{
		{
			Total:  d("50"),
			Payers: []Payer{{Member: "A", Amount: d("50")}},
			Shares: []Share{{Member: "B", Amount: d("45")}},
		},
	}

	balances := ComputeBalances([]MemberID{"A", "B"}, expenses)

	// Sum equals total paid minus total owed
	assert.True(t, d("5").Equal(balances.Sum()))
}

func TestComputeBalances_Idempotent(t *testing.T) {
	members := []MemberID{"A", "B", "C"}
	expenses := []Expense{
		{Total: d("12.34"), Payers: []Payer{{Member: "B", Amount: d("12.34")}}, Shares: []Share{{Member: "A", Amount: d("6.17")}, {Member: "C", Amount: d("6.17")}}},
		{Total: d("3"), Payers: []Payer{{Member: "C", Amount: d("3")}}, Shares: []Share{{Member: "B", Amount: d("3")}}},
	}

	first := ComputeBalances(members, expenses)
	second := ComputeBalances(members, expenses)
	require.Len(t, second, len(first))
	for id, v := range first {
		assert.True(t, v.Equal(second[id]), "%s: %s != %s", id, v, second[id])
	}

	// Expense order does not matter
	reversed := ComputeBalances(members, []Expense{expenses[1], expenses[0]})
	for id, v := range first {
		assert.True(t, v.Equal(reversed[id]))
	}
}

func TestComputeBalances_SettlementNetsOut(t *testing.T) {
	members := []MemberID{"A", "B"}
	expenses := []Expense{
		{Total: d("40"), Payers: []Payer{{Member: "A", Amount: d("40")}}, Shares: []Share{{Member: "A", Amount: d("20")}, {Member: "B", Amount: d("20")}}},
	}

	txns := SimplifyDebts(ComputeBalances(members, expenses))
	require.Len(t, txns, 1)

	expenses = append(expenses, SettlementExpense(txns[0].From, txns[0].To, txns[0].Amount))
	after := ComputeBalances(members, expenses)

	assert.True(t, after["A"].IsZero())
	assert.True(t, after["B"].IsZero())
	assert.Empty(t, SimplifyDebts(after))
}

func TestTally(t *testing.T) {
	expenses := []Expense{
		{Total: d("30"), Payers: []Payer{{Member: "B", Amount: d("30")}}, Shares: []Share{{Member: "A", Amount: d("15")}, {Member: "B", Amount: d("15")}}},
	}

	got := Tally([]MemberID{"B", "A"}, expenses)

	require.Len(t, got, 2)
	assert.Equal(t, MemberID("A"), got[0].Member)
	assert.True(t, got[0].TotalPaid.IsZero())
	assert.True(t, d("15").Equal(got[0].TotalOwed))
	assert.True(t, d("-15").Equal(got[0].Net))
	assert.Equal(t, MemberID("B"), got[1].Member)
	assert.True(t, d("30").Equal(got[1].TotalPaid))
	assert.True(t, d("15").Equal(got[1].Net))
}

func TestComputeBalances_NoMembers(t *testing.T) {
	balances := ComputeBalances(nil, []Expense{{Total: decimal.NewFromInt(1)}})
	assert.Empty(t, balances)
	assert.Empty(t, SimplifyDebts(balances))
}
