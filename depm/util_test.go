package depm

import "testing"

func TestIsValidIdentifier(t *testing.T) {
	tests := map[string]bool{
		"hello":    true,
		"_x9":      true,
		"Abla_2":   true,
		"":         false,
		"9lives":   false,
		"my-proj":  false,
		"two word": false,
	}

	for id, want := range tests {
		if got := IsValidIdentifier(id); got != want {
			t.Errorf("IsValidIdentifier(%q) = %v", id, got)
		}
	}
}
