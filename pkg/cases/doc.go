// Package cases persists legal cases: intake, lawyer assignment, lead
// attorney designation and closure. A client may hold at most five non-closed
// cases per guild; the count rule itself lives in pkg/rules.
package cases
