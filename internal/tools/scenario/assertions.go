package scenario

import (
	"fmt"
	"log"
)

// AssertionMode selects how expectation failures are handled.
type AssertionMode int

const (
	// AssertionStrict aborts the scenario on the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps running.
	AssertionLogOnly
)

// Assertions applies the configured assertion mode to expectation failures.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf reports a structural script error. Structural errors abort in every
// mode: a malformed step cannot be logged away.
func (a Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf reports a failed expectation. In strict mode the failure aborts
// the scenario; in log-only mode it is logged and the scenario continues.
func (a Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionStrict {
		return fmt.Errorf(format, args...)
	}
	if a.Logger != nil {
		a.Logger.Printf("expectation failed: "+format, args...)
	}
	return nil
}
