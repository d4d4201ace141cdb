// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Group: A self-contained ledger of people and shared expenses. The group
//     is the unit of persistence and the unit settlement operates on.
//   - Person: A group member. People are soft-deleted (status flipped to
//     deleted) rather than removed, because expenses reference them by ID.
//   - Expense: A shared cost paid by one member and split equally among a set
//     of participating members.
//
// # Design Principles
//
//  1. **Composition**: A Group exclusively owns its members and expenses;
//     deleting a group discards both.
//  2. **Weak references**: Expenses reference people by ID string, never by
//     pointer, so a person can be soft-deleted while historical expenses
//     stay resolvable.
//  3. **Snapshots**: Callers receive deep copies from the ledger. Mutation
//     only happens through ledger operations.
package models
