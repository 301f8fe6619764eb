package text2sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

func TestValidateSQLAcceptsReadQueries(t *testing.T) {
	valid := []string{
		"SELECT name, flavor FROM dishes WHERE flavor = '麻辣'",
		"WITH counts AS (SELECT dish_type, count(*) AS n FROM dishes GROUP BY dish_type) SELECT * FROM counts ORDER BY n DESC",
		"select count(*) from query_logs;",
	}
	for _, sql := range valid {
		assert.NoError(t, ValidateSQL(sql), sql)
	}
}

func TestValidateSQLRejectsMutations(t *testing.T) {
	cases := map[string]types.ErrorCode{
		"":                                       types.SQL_VALIDATION_FAILED,
		"DELETE FROM dishes":                     types.SQL_NOT_READ_ONLY,
		"INSERT INTO dishes VALUES (1)":          types.SQL_NOT_READ_ONLY,
		"DROP TABLE dishes":                      types.SQL_NOT_READ_ONLY,
		"SELECT 1; DROP TABLE dishes":            types.SQL_NOT_READ_ONLY,
		"UPDATE dishes SET name = 'x'":           types.SQL_NOT_READ_ONLY,
		"EXPLAIN SELECT * FROM dishes":           types.SQL_NOT_READ_ONLY,
		"SELECT * FROM dishes WHERE name = 'x":   types.SQL_VALIDATION_FAILED,
		"SELECT count( FROM dishes":              types.SQL_VALIDATION_FAILED,
	}
	for sql, code := range cases {
		err := ValidateSQL(sql)
		assert.Error(t, err, sql)
		assert.Equal(t, code, types.CodeOf(err), sql)
	}
}
