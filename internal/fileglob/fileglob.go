// Package fileglob discovers input files for multi-file pipeline runs.
// Patterns combine ordinary globbing with brace expansion, so
// "*.{csv,sqlite{,3}}" matches csv, sqlite, and sqlite3 files.
package fileglob

import "path/filepath"

// Expand matches pattern against the filesystem after brace expansion,
// returning each matched path once, in discovery order.
func Expand(pattern string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, pat := range BraceExpand(pattern) {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// BraceExpand expands the first top-level {a,b,...} group in s and recurses
// into the alternatives, shell-style. Input without braces expands to
// itself. Unbalanced braces are treated as literal text.
func BraceExpand(s string) []string {
	start, end, ok := findGroup(s)
	if !ok {
		return []string{s}
	}
	prefix, suffix := s[:start], s[end+1:]

	var out []string
	for _, alt := range splitAlternatives(s[start+1 : end]) {
		out = append(out, BraceExpand(prefix+alt+suffix)...)
	}
	return out
}

// findGroup locates the first complete brace group, matching nested braces.
func findGroup(s string) (start, end int, ok bool) {
	start = -1
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return start, i, true
			}
		}
	}
	return 0, 0, false
}

// splitAlternatives splits a group body on top-level commas.
func splitAlternatives(body string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	return append(out, body[start:])
}
