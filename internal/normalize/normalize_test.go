package normalize_test

import (
	"testing"

	"github.com/JaimeStill/worldmap/internal/normalize"
)

func TestText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Grace   Chapel \t Nairobi ", "Grace Chapel Nairobi"},
		{"line\nbreak", "line break"},
	}

	for _, tt := range tests {
		if got := normalize.Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pastor.", "PASTOR"},
		{" bishop ", "BISHOP"},
		{"Bible  School. Overseer", "BIBLE SCHOOL OVERSEER"},
		{"Rev. Dr.", "REV DR"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalize.Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNationalID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"12 345-678", "12345678"},
		{" ab-12 cd ", "AB12CD"},
		{"--", ""},
	}

	for _, tt := range tests {
		if got := normalize.NationalID(tt.in); got != tt.want {
			t.Errorf("NationalID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"John  Kamau Otieno", "JOHN KAMAU OTIENO"},
		{"O'Brien, Mary-Anne", "O BRIEN MARY ANNE"},
		{"José Müller", "JOSE MULLER"},
		{"  Rev. Peter (Snr) ", "REV PETER SNR"},
		{"Amina 2nd", "AMINA 2ND"},
		{"...", ""},
	}

	for _, tt := range tests {
		if got := normalize.Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country string
		want    string
	}{
		{"already international", "+254 712 345 678", "KENYA", "+254712345678"},
		{"missing plus kenya", "254712345678", "", "+254712345678"},
		{"missing plus tanzania", "255-754-123-456", "", "+255754123456"},
		{"local kenya", "0712 345678", "Kenya", "+254712345678"},
		{"local kenya code", "0712345678", "ke", "+254712345678"},
		{"local tanzania long name", "0754123456", "United Republic of Tanzania", "+255754123456"},
		{"local unknown country", "0712345678", "UGANDA", "0712345678"},
		{"short plus kept raw", "+2547", "KENYA", "+2547"},
		{"punctuation stripped", "(0712) 345-678", "TZ", "+255712345678"},
		{"empty", "", "KENYA", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.Phone(tt.raw, tt.country); got != tt.want {
				t.Errorf("Phone(%q, %q) = %q, want %q", tt.raw, tt.country, got, tt.want)
			}
		})
	}
}

func TestCongregationSize(t *testing.T) {
	tests := []struct {
		in        string
		want      int
		wantValid bool
	}{
		{"20", 20, true},
		{" 15 ", 15, true},
		{"15.9", 15, true},
		{"0", 0, true},
		{"", 0, false},
		{"about fifty", 0, false},
		{"-3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		got, valid := normalize.CongregationSize(tt.in)
		if got != tt.want || valid != tt.wantValid {
			t.Errorf("CongregationSize(%q) = (%d, %v), want (%d, %v)", tt.in, got, valid, tt.want, tt.wantValid)
		}
	}
}

func TestAffirmative(t *testing.T) {
	for _, in := range []string{"Yes", "y", " TRUE ", "1"} {
		if !normalize.Affirmative(in) {
			t.Errorf("Affirmative(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"No", "", "0", "yes please"} {
		if normalize.Affirmative(in) {
			t.Errorf("Affirmative(%q) = true, want false", in)
		}
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"  John  Kamau-Otieno ",
		"José Müller",
		"Pastor.",
		"0712 345-678",
		"254712345678",
		"+2547",
		"07+12",
		"12 345-678",
		" kenya ",
		"Kiswahili",
	}

	fields := map[string]func(string) string{
		"Name":       normalize.Name,
		"Title":      normalize.Title,
		"NationalID": normalize.NationalID,
		"Country":    normalize.Country,
		"Language":   normalize.Language,
		"Text":       normalize.Text,
		"Phone": func(s string) string {
			return normalize.Phone(s, "KENYA")
		},
	}

	for name, fn := range fields {
		for _, in := range inputs {
			once := fn(in)
			if twice := fn(once); twice != once {
				t.Errorf("%s not idempotent for %q: %q then %q", name, in, once, twice)
			}
		}
	}
}
