package graph

import (
	"regexp"
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// writeClauses are Cypher clauses that mutate the graph. Generated and
// template queries must never contain them.
var writeClauses = []string{
	"CREATE", "MERGE", "DELETE", "DETACH", "SET", "REMOVE", "DROP", "LOAD CSV", "FOREACH",
}

var paramPattern = regexp.MustCompile(`\$(\w+)`)

// ValidateCypher checks that a statement is a read-only, well-formed query.
func ValidateCypher(statement string) error {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return types.NewError(types.CYPHER_VALIDATION_FAILED, "empty cypher statement")
	}

	upper := strings.ToUpper(stripStringLiterals(trimmed))
	if !strings.Contains(upper, "MATCH") && !strings.HasPrefix(upper, "WITH") {
		return types.NewError(types.CYPHER_VALIDATION_FAILED, "statement must start with MATCH or WITH")
	}

	for _, clause := range writeClauses {
		if containsClause(upper, clause) {
			return types.NewError(types.CYPHER_VALIDATION_FAILED, "write clause not allowed: "+clause)
		}
	}

	if err := checkBalance(trimmed); err != nil {
		return err
	}
	return nil
}

// RequiredParams lists the $parameters referenced by a statement, in order
// of first appearance and without duplicates.
func RequiredParams(statement string) []string {
	seen := make(map[string]bool)
	var params []string
	for _, m := range paramPattern.FindAllStringSubmatch(statement, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			params = append(params, m[1])
		}
	}
	return params
}

// containsClause matches a clause as a whole word so identifiers like
// "offset" never trip the SET check.
func containsClause(upper, clause string) bool {
	idx := 0
	for {
		pos := strings.Index(upper[idx:], clause)
		if pos < 0 {
			return false
		}
		pos += idx
		before := pos == 0 || !isWordByte(upper[pos-1])
		end := pos + len(clause)
		after := end == len(upper) || !isWordByte(upper[end])
		if before && after {
			return true
		}
		idx = pos + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// stripStringLiterals blanks out quoted text so clause scanning never
// fires on literal values like a dish named "拔丝" with CREATE in a note.
func stripStringLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteByte(' ')
		case r == '\'' || r == '"':
			quote = r
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkBalance(s string) error {
	var quote rune
	parens, braces, brackets := 0, 0, 0
	for _, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		}
		if parens < 0 || braces < 0 || brackets < 0 {
			return types.NewError(types.CYPHER_VALIDATION_FAILED, "unbalanced brackets")
		}
	}
	if quote != 0 {
		return types.NewError(types.CYPHER_VALIDATION_FAILED, "unterminated string literal")
	}
	if parens != 0 || braces != 0 || brackets != 0 {
		return types.NewError(types.CYPHER_VALIDATION_FAILED, "unbalanced brackets")
	}
	return nil
}
