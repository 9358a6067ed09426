package token

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "single byte", text: "a", want: 1},
		{name: "exact quarter", text: "abcd", want: 1},
		{name: "rounds up", text: "abcde", want: 2},
		{name: "240 bytes", text: strings.Repeat("x", 240), want: 60},
		{name: "multibyte runes count bytes", text: "héllo", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.text); got != tt.want {
				t.Fatalf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateDeterministic(t *testing.T) {
	text := strings.Repeat("the mists of vale ", 40)
	first := Estimate(text)
	for i := 0; i < 10; i++ {
		if got := Estimate(text); got != first {
			t.Fatalf("estimate drifted from %d to %d on call %d", first, got, i)
		}
	}
}
