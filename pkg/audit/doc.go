// Package audit records privileged actions as append-only entries.
//
// Each entry carries a closed action enum, the actor and target, a typed
// details payload (before/after role snapshots, bypass particulars) and a
// severity derived from a static action table. Guild-owner bypasses are
// always severity critical. Entries are never updated or deleted through
// this package's API; the retention janitor prunes by age.
package audit
