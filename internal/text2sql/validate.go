package text2sql

import (
	"strings"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// dangerousKeywords are substrings that mark a statement as mutating or
// administrative. Generated SQL containing any of them is rejected.
var dangerousKeywords = []string{
	"DROP TABLE", "DROP DATABASE", "TRUNCATE", "DELETE FROM", "INSERT INTO",
	"UPDATE ", "MERGE ", "ALTER TABLE", "CREATE TABLE", "CREATE DATABASE",
	"GRANT", "REVOKE", "CALL ", "EXEC ",
}

// ValidateSQL checks that a statement is a single well-formed read-only
// query.
func ValidateSQL(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return types.NewError(types.SQL_VALIDATION_FAILED, "empty sql statement")
	}

	if body := strings.TrimSuffix(trimmed, ";"); strings.Contains(body, ";") {
		return types.NewError(types.SQL_NOT_READ_ONLY, "stacked statements are not allowed")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return types.NewError(types.SQL_NOT_READ_ONLY, "only SELECT or WITH queries are allowed")
	}

	for _, kw := range dangerousKeywords {
		if strings.Contains(upper, kw) {
			return types.NewError(types.SQL_NOT_READ_ONLY, "dangerous operation detected: "+strings.TrimSpace(kw))
		}
	}

	if strings.Count(trimmed, "(") != strings.Count(trimmed, ")") {
		return types.NewError(types.SQL_VALIDATION_FAILED, "unbalanced parentheses")
	}
	if strings.Count(trimmed, "'")%2 != 0 {
		return types.NewError(types.SQL_VALIDATION_FAILED, "unbalanced single quotes")
	}
	if strings.Count(trimmed, `"`)%2 != 0 {
		return types.NewError(types.SQL_VALIDATION_FAILED, "unbalanced double quotes")
	}
	return nil
}
