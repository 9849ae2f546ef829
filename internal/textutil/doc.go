// Package textutil provides small text helpers shared across packages.
//
// NormalizeShowName defines show identity: two names refer to the same show
// iff their normalized forms are byte-for-byte equal. There is no fuzzy
// matching anywhere in the tracker.
package textutil
