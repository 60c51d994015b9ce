package codec

import (
	"regexp"
	"strings"
)

// bareValueRe matches an identifier-like value following a colon, up to the
// next comma, closing brace/bracket, or newline. Quoted values never match
// because they start with '"'.
var bareValueRe = regexp.MustCompile(`(:\s*)([A-Za-z_][A-Za-z0-9_\-]*)(\s*[,}\]\n])`)

// trailingCommaRe matches a comma directly before a closing brace or bracket.
var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// Repair normalizes common malformed-JSON patterns in model output:
// surrounding code fences, bare identifier-like values after a colon,
// unterminated trailing strings, trailing commas, and unbalanced braces.
//
// Repair is idempotent: running it on already-valid JSON is a no-op.
func Repair(text string) string {
	out := StripFences(text)
	out = closeUnterminatedStrings(out)
	// Balance before quoting: a bare value truncated at the end of the input
	// only matches the quoting pattern once its closing brace is in place.
	out = balanceBraces(out)
	out = quoteBareValues(out)
	out = trailingCommaRe.ReplaceAllString(out, "$1")
	return out
}

// StripFences removes a surrounding Markdown code fence, including an optional
// language tag, without touching the content.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		// Drop the language tag ("json", "JSON5", ...) up to the first newline.
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 && isFenceTag(trimmed[:i]) {
			trimmed = trimmed[i+1:]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// quoteBareValues wraps non-keyword identifier values in quotes, so that
// {"action": CLICK} becomes {"action": "CLICK"}.
func quoteBareValues(text string) string {
	return bareValueRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := bareValueRe.FindStringSubmatch(m)
		switch sub[2] {
		case "true", "false", "null":
			return m
		}
		return sub[1] + `"` + sub[2] + `"` + sub[3]
	})
}

// closeUnterminatedStrings scans string-aware and closes a string value left
// open at a newline or at the end of the input. A string still open at the end
// is closed before any trailing commas or closing braces, which are structural
// rather than string content there.
func closeUnterminatedStrings(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	inString, escape := false, false
	for _, r := range text {
		if inString {
			if escape {
				escape = false
			} else if r == '\\' {
				escape = true
			} else if r == '"' {
				inString = false
			} else if r == '\n' {
				b.WriteByte('"')
				inString = false
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	if inString {
		s := b.String()
		i := len(s)
		for i > 0 && isStrayTerminator(s[i-1]) {
			i--
		}
		return s[:i] + `"` + s[i:]
	}
	return b.String()
}

// isStrayTerminator reports whether a byte at the tail of an open string is
// structural JSON rather than string content.
func isStrayTerminator(c byte) bool {
	return c == '}' || c == ']' || c == ',' || c == ' ' || c == '\t'
}

// balanceBraces appends the closing braces needed to balance the object
// nesting, ignoring braces inside strings.
func balanceBraces(text string) string {
	depth := 0
	inString, escape := false, false
	for _, r := range text {
		if inString {
			if escape {
				escape = false
			} else if r == '\\' {
				escape = true
			} else if r == '"' {
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
			if depth > 0 {
				depth--
			}
		}
	}
	if depth > 0 {
		return text + strings.Repeat("}", depth)
	}
	return text
}
