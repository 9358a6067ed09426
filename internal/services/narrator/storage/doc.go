// Package storage defines persistence contracts for narrator content and
// assembly audits.
//
// These interfaces keep assembly orchestration separate from storage
// technology: content can come from any document source and audits can land
// in any append-only store without the service changing.
package storage
