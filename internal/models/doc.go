// Package models defines the core domain models for Billy.
//
// # Models
//
//   - Profile: a shared budgeting context that owns expenses
//   - Expense: a shared outcome split among participants, with per-participant
//     owed amounts and paid flags
//   - BillTransaction: one entry of an ephemeral split-bill session
//   - Debt: a derived, netted amount one participant owes another
//
// Participants are identified by opaque string keys (an email for profile
// members, a display name inside an ephemeral bill). There is no participant
// entity; the key is the identity.
//
// # Design Principles
//
// 1. Plain data only: these types cross the data-access API boundary, so no
// framework or storage types appear here.
// 2. Expenses are the ground truth: debts are recomputed from expenses on
// demand and are never stored, except when a redistribution commits netted
// adjustment expenses back into the ledger.
// 3. Avoid circular references: relationships use ID strings, not pointers.
package models
