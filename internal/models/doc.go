// Package models defines the persisted domain models for SplitMoney.
//
// # Models
//
//   - User: registered account; group members are users
//   - Group: named set of members with a creator who may rename or delete it
//   - Member: a user's membership in a group, with display info
//   - Expense: a payment made for the group, split into payers and shares.
//     Recorded settlements are expenses of kind "settlement"
//   - Invitation: a pending request for someone to join a group
//
// Money is carried as decimal.Decimal throughout. Balances are not models:
// they are derived on every request by the ledger package.
//
// Relationships are expressed with ID strings rather than pointers.
package models
