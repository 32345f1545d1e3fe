// Package aggregates defines the error taxonomy shared by the canonical catalog's write paths.
//
// Codes are transport independent; the HTTP layer and the job runners map them to statuses and
// retry decisions.
package aggregates
