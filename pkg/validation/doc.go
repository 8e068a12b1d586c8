// Package validation provides a generic validation dispatch layer. A
// request names an entity type, an operation, and carries an open data bag;
// the service runs every strategy registered for that entity/operation pair
// and merges their fragments into one result.
//
// Strategies come in two phases. Schema strategies check structural shape
// (required fields, known enum values) and run first; if any fails, the
// business strategies are skipped. Business strategies consult live state
// through the rule service (role caps, case limits, eligibility).
//
// Registration is explicit. There is no reflection and no implicit pass:
// a request for an unregistered entity/operation pair is rejected.
package validation
