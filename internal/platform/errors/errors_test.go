package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeValidation, "entry start slug is required")
	if !stderrors.Is(err, New(CodeValidation, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeNotFound, "entry start slug is required")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk gone")
	err := Wrap(CodeInternal, "write audit record", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to stay in the chain")
	}
	if err.Error() != "write audit record" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "coded error", err: New(CodeRenderFailed, "overlay broken"), want: CodeRenderFailed},
		{name: "wrapped coded error", err: fmt.Errorf("assemble: %w", New(CodeValidation, "bad budget")), want: CodeValidation},
		{name: "plain error", err: stderrors.New("plain"), want: CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFatalCodes(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeValidation, true},
		{CodeMissingProtectedScope, true},
		{CodeInternal, true},
		{CodeRenderFailed, false},
		{CodeNotFound, false},
		{CodeUnknown, false},
	}

	for _, tt := range tests {
		if got := tt.code.Fatal(); got != tt.want {
			t.Fatalf("%s Fatal = %v, want %v", tt.code, got, tt.want)
		}
	}
}
