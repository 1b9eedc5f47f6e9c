package category

import "testing"

func TestNormalize_FirstKnownTagWins(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want Category
	}{
		{"single known tag", []string{"restaurants"}, Food},
		{"first known of several", []string{"coffee", "gyms"}, Food},
		{"unknown tags skipped", []string{"tradamerican", "newamerican", "bakeries"}, Food},
		{"unknowns interspersed", []string{"xyz", "spas", "restaurants"}, Health},
		{"uppercase tag", []string{"NIGHTLIFE"}, Entertainment},
		{"mixed case", []string{"BookStores"}, Retail},
		{"services alias", []string{"plumbing"}, Services},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.tags); got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestNormalize_Default(t *testing.T) {
	tests := []struct {
		name string
		tags []string
	}{
		{"nil tags", nil},
		{"empty tags", []string{}},
		{"all unknown", []string{"tradamerican", "hotdogs", "vinyl"}},
		{"empty strings", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.tags); got != Default {
				t.Errorf("Normalize(%v) = %q, want default %q", tt.tags, got, Default)
			}
		})
	}
}

func TestValid(t *testing.T) {
	for _, c := range All {
		if !Valid(string(c)) {
			t.Errorf("Valid(%q) = false, want true", c)
		}
	}
	if Valid("Groceries") {
		t.Error("Valid(\"Groceries\") = true, want false")
	}
	if Valid("food") {
		t.Error("Valid is case-sensitive; Valid(\"food\") should be false")
	}
}
