// Package models defines the core domain models for splitledger.
//
// # Aggregates
//
//   - Wallet and PersonalTransaction: a user's money and its history.
//     Wallet.Balance is a running total, not a list of entries.
//   - Group and GroupTransaction: one paid expense split into per-participant
//     obligations (Participant), each settled at most once.
//   - Family, FamilyBalance and FamilyTransaction: a shared pool plus a
//     per-member mirror of wallet balances as seen from the family.
//   - Category and User: reference data owned by other collaborators.
//
// # Design Principles
//
// 1. **Money is decimal**: every monetary field is a decimal.Decimal, never a float.
// 2. **References are IDs**: relationships use ID strings, no pointers between aggregates.
// 3. **Participants are tagged**: a ParticipantRef is either a registered user
// or an email invitee; it is never guessed at read time.
// 4. **Timestamps are Unix seconds**.
package models
