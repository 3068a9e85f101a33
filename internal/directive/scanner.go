package directive

import "strings"

// Lookup compiles the directive name with its argument expression. ok is
// false for names it does not know, which are then left in the source.
type Lookup func(name, expression string) (compiled string, ok bool)

// Compile rewrites every @name and @name(expression) token in source
// through lookup.
//
// An @ that follows a word character is not a directive, so e-mail
// addresses survive. @@name is the escape for a literal @name. The
// expression runs to the parenthesis balancing the opening one; quoted
// strings may contain parentheses. Spaces or tabs may separate the name
// from its parenthesis.
func Compile(source string, lookup Lookup) string {
	if lookup == nil || !strings.Contains(source, "@") {
		return source
	}

	var out strings.Builder
	out.Grow(len(source))

	i := 0
	for i < len(source) {
		at := strings.IndexByte(source[i:], '@')
		if at < 0 {
			out.WriteString(source[i:])
			break
		}
		at += i
		out.WriteString(source[i:at])

		if at > 0 && isWordByte(source[at-1]) {
			out.WriteByte('@')
			i = at + 1
			continue
		}

		// @@name escapes the directive.
		if at+1 < len(source) && source[at+1] == '@' {
			if end := scanName(source, at+2); end > at+2 {
				out.WriteString(source[at+1 : end])
				i = end
				continue
			}
			out.WriteString("@@")
			i = at + 2
			continue
		}

		nameEnd := scanName(source, at+1)
		if nameEnd == at+1 {
			out.WriteByte('@')
			i = at + 1
			continue
		}
		name := source[at+1 : nameEnd]

		expression, hasArgs, end := scanArguments(source, nameEnd)
		if !hasArgs {
			end = nameEnd
		}

		compiled, ok := lookup(name, expression)
		if !ok {
			out.WriteString(source[at:nameEnd])
			i = nameEnd
			continue
		}

		out.WriteString(compiled)
		i = end
	}

	return out.String()
}

// scanName returns the index just past the identifier starting at start.
func scanName(source string, start int) int {
	end := start
	for end < len(source) && isWordByte(source[end]) {
		end++
	}
	return end
}

// scanArguments reads an optional parenthesised expression after a
// directive name. It returns the inner expression and the index past the
// closing parenthesis. Unbalanced input yields hasArgs false.
func scanArguments(source string, start int) (expression string, hasArgs bool, end int) {
	open := start
	for open < len(source) && (source[open] == ' ' || source[open] == '\t') {
		open++
	}
	if open >= len(source) || source[open] != '(' {
		return "", false, start
	}

	depth := 0
	var quote byte
	for pos := open; pos < len(source); pos++ {
		c := source[pos]
		if quote != 0 {
			switch c {
			case '\\':
				pos++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(source[open+1 : pos]), true, pos + 1
			}
		}
	}

	return "", false, start
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
