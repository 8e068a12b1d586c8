// Package retainers manages retainer agreements between the firm and its
// clients. A lawyer opens a pending agreement, the named client signs it,
// and signatures are audited.
package retainers
