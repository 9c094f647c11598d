package similarity_test

import (
	"testing"

	"github.com/JaimeStill/worldmap/pkg/similarity"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "JAMES MUTUA", "JAMES MUTUA", 100},
		{"reordered tokens", "JOHN KAMAU OTIENO", "OTIENO JOHN KAMAU", 100},
		{"repeated token", "JOHN OTIENO", "JOHN OTIENO OTIENO", 100},
		{"subset", "DAVID OMONDI", "DAVID OMONDI ONYANGO", 100},
		{"middle initial", "JOHN KAMAU OTIENO", "JOHN K OTIENO", 91},
		{"middle initial longer name", "GRACE AKINYI ODHIAMBO", "GRACE A ODHIAMBO", 93},
		{"one letter typo", "PETER OCHIENG", "PETER OCHENG", 96},
		{"spelling variant", "SAMUEL KIPRONO", "SAMWEL KIPRONO", 92},
		{"different surname", "ELIZABETH NJERI", "ELIZABETH WANJIRU", 81},
		{"unrelated", "MARY WANJIKU", "PETER OCHIENG", 8},
		{"no shared tokens", "ABC", "ABD", 66},
		{"empty left", "", "JAMES", 0},
		{"empty right", "JAMES", "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity.TokenSetRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("TokenSetRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSetRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"JOHN KAMAU OTIENO", "JOHN K OTIENO"},
		{"AMINA HASSAN JUMA", "AMINA HASANI JUMA"},
		{"MARY WANJIKU", "PETER OCHIENG"},
	}

	for _, p := range pairs {
		ab := similarity.TokenSetRatio(p[0], p[1])
		ba := similarity.TokenSetRatio(p[1], p[0])
		if ab != ba {
			t.Errorf("TokenSetRatio not symmetric for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestIndel(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"KAMAU", "K", 4},
		{"ABC", "ABD", 2},
		{"OCHIENG", "OCHENG", 1},
		{"", "JAMES", 5},
	}

	for _, tt := range tests {
		if got := similarity.Indel(tt.a, tt.b); got != tt.want {
			t.Errorf("Indel(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
