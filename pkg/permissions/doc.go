// Package permissions resolves named authorities for guild members.
//
// Authority is layered: the guild owner holds everything unconditionally;
// the admin action is additionally granted by per-guild admin user and admin
// role lists; every other action is granted only by its own configured role
// list. Holding admin does not imply any other action — the composite
// helpers (HasLawyerPermission and friends) exist exactly because callers
// usually want "admin or X".
//
// Guild configurations are lazily created with empty defaults through
// Store.Ensure, so a brand-new guild denies everything except the owner.
// All error paths fail closed: a decision is always returned and it is
// always "deny" when the config cannot be loaded.
package permissions
