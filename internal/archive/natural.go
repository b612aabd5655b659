package archive

import "strings"

// naturalLess orders names case-insensitively with digit runs compared as
// numbers, so "page2" sorts before "page10".
func naturalLess(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		ca, cb := chunk(a), chunk(b)
		a, b = a[len(ca):], b[len(cb):]
		if ca == cb {
			continue
		}
		da, db := isDigits(ca), isDigits(cb)
		switch {
		case da && db:
			na, nb := strings.TrimLeft(ca, "0"), strings.TrimLeft(cb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			return len(ca) < len(cb)
		case da != db:
			return da
		default:
			return ca < cb
		}
	}
	return len(a) < len(b)
}

// chunk returns the leading run of digits or non-digits of s.
func chunk(s string) string {
	digit := s[0] >= '0' && s[0] <= '9'
	for i := 1; i < len(s); i++ {
		if (s[i] >= '0' && s[i] <= '9') != digit {
			return s[:i]
		}
	}
	return s
}

func isDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
