package ledger

import "github.com/shopspring/decimal"

// SettlementExpense builds the expense that records a payment of amount from
// a debtor to a creditor. The debtor is the sole payer and the creditor owes
// the full amount, so the next ComputeBalances nets the debt out.
func SettlementExpense(from, to MemberID, amount decimal.Decimal) Expense {
	return Expense{
		Kind:   KindSettlement,
		Total:  amount,
		Payers: []Payer{{Member: from, Amount: amount}},
		Shares: []Share{{Member: to, Amount: amount}},
	}
}
