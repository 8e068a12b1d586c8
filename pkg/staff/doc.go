// Package staff holds the firm's role hierarchy and staff records.
//
// The hierarchy is a fixed six-tier table with per-tier population caps,
// exposed through the pure lookups LevelOf and CapOf. Records keep the full
// role-change history of a member; firing flips status to terminated and
// re-hiring reactivates the same row, so the (guild, user) pair is unique
// for all time.
package staff
