package serial

import "strings"

// splitFirst splits s at the first occurrence of sep, returning
// (before, after, true), or ("", "", false) if sep does not occur.
func splitFirst(s string, sep byte) (string, string, bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseCall splits "name(args)" into (name, args, true). Returns
// ok=false if s is not of that shape.
func parseCall(s string) (string, string, bool) {
	i := strings.IndexByte(s, '(')
	if i < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return s[:i], s[i+1 : len(s)-1], true
}

// splitArgs splits a comma-separated argument list at depth-0 commas
// only, so nested "kind(...)" calls are not split internally.
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, s[start:])
	return args
}
