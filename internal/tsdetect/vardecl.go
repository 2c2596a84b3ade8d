package tsdetect

import "strings"

// varDeclModifiers are TS declaration modifiers that can precede a
// parameter or class field's name and must be stripped before the
// name/type/assignment scan begins.
var varDeclModifiers = []string{
	"public", "private", "protected", "readonly", "static", "abstract", "declare", "override",
}

func stripModifiers(s string) string {
	for {
		trimmed := strings.TrimLeft(s, " \t\n")
		matched := false
		for _, m := range varDeclModifiers {
			if strings.HasPrefix(trimmed, m) {
				rest := trimmed[len(m):]
				if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' {
					s = rest
					matched = true
					break
				}
			}
		}
		if !matched {
			return trimmed
		}
	}
}

// parseVarDecl implements the shared ARGUMENT/ATTRIBUTES var-decl
// matcher of spec.md §4.7: a 3-state scan (READING_NAME → on ':' →
// READING_TYPE → on '=' → READING_ASSIGNMENT) over one already-isolated
// declaration's text. Inside the type region, '(' '[' '{' '<' all
// nest together; inside the assignment region, only '(' '[' '{' do —
// a bare '<'/'>' in a default value (a comparison, a JSX-free
// TypeScript codebase has none) is not bracket-tracked there.
func parseVarDecl(raw string) (name string, typ *string) {
	s := strings.TrimRight(raw, " \t\n\r;")
	s = stripModifiers(s)

	const (
		readingName = iota
		readingType
		readingAssignment
	)
	state := readingName
	depth := 0
	var nameBuf, typeBuf strings.Builder

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch state {
		case readingName:
			switch ch {
			case ':':
				state = readingType
				continue
			case '=':
				state = readingAssignment
				continue
			}
			nameBuf.WriteByte(ch)

		case readingType:
			switch ch {
			case '(', '[', '{', '<':
				depth++
			case ')', ']', '}', '>':
				if depth > 0 {
					depth--
				}
			case '=':
				if depth == 0 {
					state = readingAssignment
					continue
				}
			}
			typeBuf.WriteByte(ch)

		case readingAssignment:
			switch ch {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}

	name = strings.TrimSpace(nameBuf.String())
	t := strings.TrimSpace(typeBuf.String())
	if t != "" {
		typ = &t
	}
	return name, typ
}
