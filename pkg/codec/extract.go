package codec

import "strings"

// ExtractBalancedObject returns the first balanced JSON object in text: from
// the first '{' to the matching '}' at depth zero, tracking strings and
// escapes. The second return is false when no balanced object exists.
func ExtractBalancedObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString, escape := false, false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
				inString, escape = false, false
			}
			continue
		}
		if inString {
			if escape {
				escape = false
				continue
			}
			switch r {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[start : i+1]), true
			}
		}
	}
	return "", false
}
