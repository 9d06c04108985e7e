package table

import "strconv"

// inferCell types a raw text cell: whole-string integers become int64,
// whole-string decimals become float64, exact "true"/"false" become bool,
// the empty string becomes nil, everything else stays text. Leading or
// trailing whitespace keeps a cell textual — "  10 " is a string the strip
// rules may still care about, not the number 10.
func inferCell(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		// ParseFloat accepts forms like "inf" and "1e3" that a table cell
		// almost never means; require a digit up front (or after a sign).
		if hasLeadingDigit(s) {
			return f
		}
	}
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	return s
}

func hasLeadingDigit(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c == '+' || c == '-' {
		if len(s) < 2 {
			return false
		}
		c = s[1]
		if c == '.' && len(s) > 2 {
			c = s[2]
		}
	} else if c == '.' && len(s) > 1 {
		c = s[1]
	}
	return c >= '0' && c <= '9'
}
