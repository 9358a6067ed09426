// Package narrator contains the prompt assembly boundary.
//
// It turns content documents into a single bounded prompt: documents are
// compacted, degraded to their token caps, and walked against a global
// budget so protected framing always survives while optional pieces drop
// with an audited reason.
package narrator
