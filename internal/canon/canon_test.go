package canon

import "testing"

func TestWorkerCanonicalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "typo maps to equipment matrix spelling",
			input: "Fransico",
			want:  "Fransisco",
		},
		{
			name:  "temp prefix stripped via mapping",
			input: "Temp - Noe",
			want:  "Noe",
		},
		{
			name:  "production log variant",
			input: "Cindy",
			want:  "Cyndi",
		},
		{
			name:  "unknown name passes through unchanged",
			input: "Roberta",
			want:  "Roberta",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  Maricela ",
			want:  "Maricella",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worker(tt.input); got != tt.want {
				t.Errorf("Worker(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProductCanonicalization(t *testing.T) {
	if got := Product("Tenjam - Blue"); got != "Tenjam Blue" {
		t.Errorf("Product(Tenjam - Blue) = %q, want Tenjam Blue", got)
	}
	if got := Product("Widget X"); got != "Widget X" {
		t.Errorf("unknown product changed: got %q", got)
	}
}

// Canonicalizing an already-canonical name must return it unchanged.
func TestCanonicalIsIdempotent(t *testing.T) {
	for raw := range Workers {
		once := Worker(raw)
		twice := Worker(once)
		if once != twice {
			t.Errorf("Worker not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
	for raw := range Products {
		once := Product(raw)
		twice := Product(once)
		if once != twice {
			t.Errorf("Product not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestCustomTable(t *testing.T) {
	table := Table{"Acme - Red": "Acme Red"}
	if got := table.Canonical("Acme - Red"); got != "Acme Red" {
		t.Errorf("Canonical = %q, want Acme Red", got)
	}
	if got := table.Canonical("Acme Red"); got != "Acme Red" {
		t.Errorf("canonical name changed: got %q", got)
	}
}
