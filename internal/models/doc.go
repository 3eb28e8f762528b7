// Package models defines the persisted domain records of the split ledger.
//
// # Records
//
//   - Expense: a shared expense paid by one user and split into Shares
//   - Share: one participant's portion of an Expense
//   - Settlement: a real payment between two users that offsets balances
//   - Activity: an activity-feed entry written by the event sink
//   - Ledger: a consistent snapshot of a group's expenses and settlements
//
// Derived values (balances, debt edges, settlement suggestions) are not
// records; they live in the calculator package and are recomputed from a
// Ledger on every request.
//
// # Design Principles
//
//  1. Money is decimal.Decimal everywhere, never float64.
//  2. Children reference parents by ID string only (Share.ExpenseID), never
//     by pointer.
//  3. An Expense owns its Shares; updating an expense replaces the whole
//     share set.
package models
