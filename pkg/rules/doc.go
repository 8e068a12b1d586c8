// Package rules enforces the firm's stateful business rules: role population
// caps, hierarchy-respecting promotion and demotion, the per-client active
// case cap, and lead-attorney eligibility.
//
// Every check returns a Result instead of an error; expected business
// conditions never surface as Go errors, and store failures fail closed into
// an invalid Result. A failed role-limit check is bypass-eligible: the guild
// owner may override it through the bypass protocol, which demands a reason
// and writes a critical audit entry. BypassAvailable on a Result describes
// the situation, not the actor — AuthorizeBypass is what checks the actor.
package rules
