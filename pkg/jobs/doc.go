// Package jobs manages the firm's job postings: senior staff open a posting
// for a staff role, guild members apply, and senior staff review and close.
package jobs
