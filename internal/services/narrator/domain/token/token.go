// Package token provides the shared token cost estimate for prompt text.
//
// Compaction and budget enforcement must agree on cost, so this is the only
// estimator in the module; both phases import it rather than rounding on
// their own.
package token

// Estimate approximates the token cost of text as ceil(len/4). The estimate
// is byte-based and deliberately ignorant of encoding and locale.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
