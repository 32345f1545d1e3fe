// Package aggregates owns the transaction boundary for catalog writes and the mapping of
// store failures onto the domain error codes (conflict, retryable, not found).
package aggregates
