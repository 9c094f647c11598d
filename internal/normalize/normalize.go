// Package normalize canonicalizes the identity fields of an application so that
// values typed differently by different field officers compare equal.
//
// Every function is pure and idempotent: applying it to its own output returns
// the output unchanged.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	nonName      = regexp.MustCompile(`[^A-Z0-9 ]+`)
	idSeparators = regexp.MustCompile(`[\s\-]+`)
	nonPhone     = regexp.MustCompile(`[^\d+]`)
)

var callingCodes = map[string]string{
	"KENYA":                       "+254",
	"KE":                          "+254",
	"TANZANIA":                    "+255",
	"TZ":                          "+255",
	"UNITED REPUBLIC OF TANZANIA": "+255",
}

var affirmatives = map[string]bool{
	"YES":  true,
	"Y":    true,
	"TRUE": true,
	"1":    true,
}

// Text trims s and collapses internal whitespace runs to a single space.
func Text(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Country returns the uppercase text form of a country name or code.
func Country(s string) string {
	return upper(Text(s))
}

// Title uppercases a ministry title and strips periods ("Pastor." -> "PASTOR").
func Title(s string) string {
	s = strings.ReplaceAll(upper(Text(s)), ".", "")
	return Text(s)
}

// Language returns the uppercase text form of a requested book language.
func Language(s string) string {
	return upper(Text(s))
}

// NationalID uppercases an identity number and removes whitespace and hyphens.
func NationalID(s string) string {
	return idSeparators.ReplaceAllString(upper(strings.TrimSpace(s)), "")
}

// Name uppercases a personal name, folds accented letters to their base form,
// replaces every run of characters outside [A-Z0-9 ] with a space, and
// collapses whitespace.
func Name(s string) string {
	s = fold(upper(strings.TrimSpace(s)))
	s = nonName.ReplaceAllString(s, " ")
	return Text(s)
}

// CallingCode returns the international calling code for a normalized
// country, or "" when the country is not one the program serves.
func CallingCode(country string) string {
	return callingCodes[country]
}

// Phone canonicalizes a phone number toward E.164 on a best-effort basis.
// Only digits and '+' are kept. A '+'-prefixed number of at least ten
// characters is kept as-is; a number starting with 254 or 255 gains a '+';
// a leading 0 is replaced by the calling code of country when known.
// Anything else is returned stripped but otherwise unchanged.
func Phone(raw, country string) string {
	p := nonPhone.ReplaceAllString(strings.TrimSpace(raw), "")

	switch {
	case strings.HasPrefix(p, "+") && len(p) >= 10:
		return p
	case strings.HasPrefix(p, "254"):
		return "+254" + p[3:]
	case strings.HasPrefix(p, "255"):
		return "+255" + p[3:]
	}

	if code := CallingCode(Country(country)); code != "" && strings.HasPrefix(p, "0") {
		return code + p[1:]
	}

	return p
}

// CongregationSize parses a reported congregation size. Decimal values are
// truncated toward zero. Blank, non-numeric, negative, and non-finite input
// yields (0, false).
func CongregationSize(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}

	return int(f), true
}

// Affirmative reports whether a yes/no answer is one of YES, Y, TRUE, or 1.
func Affirmative(s string) bool {
	return affirmatives[upper(Text(s))]
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
