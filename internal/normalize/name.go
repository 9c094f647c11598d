package normalize

import "strings"

// SplitName splits a normalized full name into first, middle, and last parts.
// One token is a first name only; two tokens are first and last; with three or
// more, everything between the first and last token is the middle name.
func SplitName(full string) (first, middle, last string) {
	parts := strings.Fields(full)

	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1]
	}
}

// NameKey builds the coarse identity key first-initial|middle-initials|last.
// "JOHN KAMAU MWANGI OTIENO" yields "J|KM|OTIENO".
func NameKey(full string) string {
	first, middle, last := SplitName(full)

	var initials strings.Builder
	for _, m := range strings.Fields(middle) {
		initials.WriteString(firstRune(m))
	}

	return firstRune(first) + "|" + initials.String() + "|" + last
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
