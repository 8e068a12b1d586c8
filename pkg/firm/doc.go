// Package firm orchestrates the law firm's operations: staff hiring,
// promotion, demotion and termination, and the case lifecycle from intake to
// closure. Each operation checks the actor's authority, evaluates the
// relevant business rules, applies the mutation and writes an audit entry.
// Failed role-limit checks may be overridden by the guild owner through the
// bypass protocol in pkg/rules.
package firm
