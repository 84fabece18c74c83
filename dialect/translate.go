package dialect

import "strings"

// Translate rewrites every universal "?" marker in query into the native
// marker of style p. Markers inside single-quoted strings, double-quoted
// strings and backtick-quoted identifiers are copied untouched, as is any
// quote or backtick preceded by an unescaped backslash.
//
// The scan is a single left-to-right pass; the statement is never parsed or
// validated. For Question the input is returned as is.
//
//	Translate("SELECT * FROM t WHERE a = ? AND b LIKE '%?%'", Format)
//	// SELECT * FROM t WHERE a = %s AND b LIKE '%?%'
func Translate(query string, p Placeholder) string {
	if p.IsUniversal() || !strings.Contains(query, Universal) {
		return query
	}

	var out strings.Builder
	out.Grow(len(query) + 16)

	n := 0
	lex(query, func(ch byte, marker bool) {
		if marker {
			n++
			out.WriteString(p.Token(n))
			return
		}
		out.WriteByte(ch)
	})
	return out.String()
}

// CountMarkers returns how many markers Translate would rewrite in query.
func CountMarkers(query string) int {
	n := 0
	lex(query, func(_ byte, marker bool) {
		if marker {
			n++
		}
	})
	return n
}

// lex walks query byte by byte and reports each byte together with whether
// it is a parameter marker. All delimiters are ASCII, so multi-byte UTF-8
// sequences pass through unchanged.
func lex(query string, emit func(ch byte, marker bool)) {
	var (
		inString bool // inside '...' or "..."
		delim    byte // quote that opened the current string
		inIdent  bool // inside `...`
		escaped  bool // previous byte was an unescaped backslash
	)

	for i := 0; i < len(query); i++ {
		ch := query[i]

		if escaped {
			// a backslash only neutralizes quotes and backticks
			escaped = false
			if ch == '?' && !inString && !inIdent {
				emit(ch, true)
				continue
			}
			emit(ch, false)
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '\'', '"':
			switch {
			case inIdent:
				// quotes are plain text inside an identifier
			case !inString:
				inString, delim = true, ch
			case ch == delim:
				inString = false
			}
		case '`':
			if !inString {
				inIdent = !inIdent
			}
		case '?':
			if !inString && !inIdent {
				emit(ch, true)
				continue
			}
		}
		emit(ch, false)
	}
}
