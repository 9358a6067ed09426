package content

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{name: "first non-empty wins", candidates: []string{"", "base", "default"}, want: "base"},
		{name: "localized wins", candidates: []string{"localizado", "base"}, want: "localizado"},
		{name: "all empty", candidates: []string{"", ""}, want: ""},
		{name: "no candidates", candidates: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.candidates...); got != tt.want {
				t.Fatalf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchOverlay(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		locale string
		want   string
		ok     bool
	}{
		{name: "exact", keys: []string{"pt", "de"}, locale: "pt", want: "pt", ok: true},
		{name: "regional falls back to base language", keys: []string{"pt", "de"}, locale: "pt-BR", want: "pt", ok: true},
		{name: "base request matches regional overlay", keys: []string{"pt-BR"}, locale: "pt", want: "pt-BR", ok: true},
		{name: "empty locale", keys: []string{"pt"}, locale: "", ok: false},
		{name: "unparseable locale", keys: []string{"pt"}, locale: "no_such_locale!", ok: false},
		{name: "no keys", keys: nil, locale: "pt", ok: false},
		{name: "invalid keys skipped", keys: []string{"???", "de"}, locale: "de", want: "de", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchOverlay(tt.keys, tt.locale)
			if ok != tt.ok {
				t.Fatalf("matchOverlay ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("matchOverlay = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchOverlayDeterministic(t *testing.T) {
	keys := []string{"pt-BR", "pt-PT", "de", "fr"}
	first, ok := matchOverlay(keys, "pt")
	if !ok {
		t.Fatal("expected a match for pt")
	}
	for i := 0; i < 10; i++ {
		got, ok := matchOverlay(keys, "pt")
		if !ok || got != first {
			t.Fatalf("match unstable: %q then %q", first, got)
		}
	}
}
