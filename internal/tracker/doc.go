// Package tracker is the service layer over the store: it validates and
// defaults show and catalog records, keeps a show's downloaded/needed
// partition consistent, and writes an activity log entry for every mutation.
//
// The HTTP API and the CLI both go through Service, so the two surfaces share
// validation messages and activity wording.
package tracker
