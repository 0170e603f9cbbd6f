package n3

import (
	"strings"
)

// SplitStatements splits text into top-level statements at "." characters
// that are outside quotes, braces and angle-bracketed identifiers.
// The terminating dots are not included. Blank statements are dropped.
// A dot between two digits belongs to a decimal number and never splits.
func SplitStatements(text string) []string {
	var stmts []string
	var buf strings.Builder

	inQuote := false
	braceDepth := 0
	iriDepth := 0

	flush := func() {
		if stmt := strings.TrimSpace(buf.String()); stmt != "" {
			stmts = append(stmts, stmt)
		}
		buf.Reset()
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inQuote {
			buf.WriteByte(ch)
			if ch == '\\' && i+1 < len(text) {
				i++
				buf.WriteByte(text[i])
			} else if ch == '"' {
				inQuote = false
			}
			continue
		}

		switch ch {
		case '"':
			inQuote = true
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '<':
			// "<=" and a lone "<" are operators, not identifiers
			if i+1 < len(text) && !isSpace(text[i+1]) && text[i+1] != '=' {
				iriDepth++
			}
		case '>':
			if iriDepth > 0 {
				iriDepth--
			}
		case '.':
			if braceDepth == 0 && iriDepth == 0 && !isDecimalPoint(text, i) {
				flush()
				continue
			}
		}
		buf.WriteByte(ch)
	}
	flush()

	return stmts
}

// isDecimalPoint reports whether the dot at position i sits between two digits
func isDecimalPoint(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isDigit(text[i-1]) && isDigit(text[i+1])
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// stripComments removes "#" comments up to the end of the line.
// A "#" inside a quoted literal or an <...> identifier is kept, so IRIs
// such as <http://www.w3.org/2001/XMLSchema#integer> survive.
// Quote and identifier state does not carry across lines.
func stripComments(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	inQuote := false
	inIRI := false
	inComment := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if ch == '\n' {
			inQuote, inIRI, inComment = false, false, false
			out.WriteByte(ch)
			continue
		}
		if inComment {
			continue
		}

		switch {
		case inQuote:
			if ch == '\\' && i+1 < len(text) && text[i+1] != '\n' {
				out.WriteByte(ch)
				i++
				ch = text[i]
			} else if ch == '"' {
				inQuote = false
			}
		case inIRI:
			if ch == '>' || ch == ' ' || ch == '\t' {
				inIRI = false
			}
		case ch == '"':
			inQuote = true
		case ch == '<':
			inIRI = i+1 < len(text) && !isSpace(text[i+1]) && text[i+1] != '='
		case ch == '#':
			inComment = true
			continue
		}
		out.WriteByte(ch)
	}

	return out.String()
}
