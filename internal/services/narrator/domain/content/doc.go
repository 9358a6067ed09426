// Package content defines the raw document types accepted at the ingestion
// boundary.
//
// Documents are schema-validated when parsed: unknown fields are rejected
// and required identity fields must be present. Locale overlays are resolved
// through an explicit ordered candidate chain (locale-specific field, base
// field, documented default) instead of ad hoc fallbacks scattered through
// the compactors.
package content
