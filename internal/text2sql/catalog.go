// Package text2sql turns natural-language analytics questions into
// validated read-only SQL, runs them against a registered connection and
// renders the rows into an answer.
package text2sql

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Column is one column of a catalog table.
type Column struct {
	Name         string
	Type         string
	Description  string
	IsPrimaryKey bool
	IsForeignKey bool
}

// Table is one table of a catalog schema.
type Table struct {
	Name        string
	Description string
	Columns     []Column
}

// Relationship is a foreign-key fact between two catalog tables.
type Relationship struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
	Description  string
}

// Catalog holds schema metadata per connection ID so the generator can
// ground SQL on real table shapes.
type Catalog struct {
	schemas map[string]schema
}

type schema struct {
	tables        []Table
	relationships []Relationship
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]schema)}
}

// Register binds a schema to a connection ID, replacing any previous one.
func (c *Catalog) Register(connectionID string, tables []Table, relationships []Relationship) {
	c.schemas[connectionID] = schema{tables: tables, relationships: relationships}
}

// Has reports whether a schema is registered for the connection.
func (c *Catalog) Has(connectionID string) bool {
	_, ok := c.schemas[connectionID]
	return ok
}

// stopWords are tokens too generic to score tables by.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "from": true, "with": true,
	"into": true, "what": true, "which": true, "when": true, "who": true,
	"where": true, "how": true, "many": true, "much": true, "that": true,
	"this": true, "those": true, "these": true, "all": true, "any": true,
	"year": true, "month": true, "day": true, "query": true, "please": true,
	"show": true, "list": true, "give": true,
	"查询": true, "一下": true, "所有": true, "哪些": true, "什么": true, "数据": true,
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func extractKeywords(question string) []string {
	var keywords []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(question), -1) {
		if !stopWords[tok] {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// scoreTable weights name hits over description hits, column names over
// column descriptions.
func scoreTable(t Table, keywords []string) float64 {
	var score float64
	name := strings.ToLower(t.Name)
	desc := strings.ToLower(t.Description)
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			score += 2.0
		}
		if strings.Contains(desc, kw) {
			score += 1.0
		}
	}
	for _, col := range t.Columns {
		colName := strings.ToLower(col.Name)
		colDesc := strings.ToLower(col.Description)
		for _, kw := range keywords {
			if strings.Contains(colName, kw) {
				score += 1.5
			}
			if strings.Contains(colDesc, kw) {
				score += 0.75
			}
		}
	}
	return score
}

// maxContextTables caps the schema context handed to the model.
const maxContextTables = 6

// Retrieve selects the tables most relevant to the question and renders
// them as CREATE TABLE text with comment annotations. With no keyword
// hits, the full schema is returned.
func (c *Catalog) Retrieve(connectionID, question string) (string, bool) {
	s, ok := c.schemas[connectionID]
	if !ok {
		return "", false
	}

	tables := s.tables
	keywords := extractKeywords(question)
	if len(keywords) > 0 {
		type scored struct {
			table Table
			score float64
		}
		var positive []scored
		for _, t := range tables {
			if sc := scoreTable(t, keywords); sc > 0 {
				positive = append(positive, scored{t, sc})
			}
		}
		if len(positive) > 0 {
			sort.SliceStable(positive, func(i, j int) bool { return positive[i].score > positive[j].score })
			if len(positive) > maxContextTables {
				positive = positive[:maxContextTables]
			}
			tables = make([]Table, len(positive))
			for i, p := range positive {
				tables[i] = p.table
			}
		}
	}

	kept := make(map[string]bool, len(tables))
	for _, t := range tables {
		kept[t.Name] = true
	}

	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		renderCreateTable(&b, t)
	}
	for _, rel := range s.relationships {
		if kept[rel.SourceTable] && kept[rel.TargetTable] {
			fmt.Fprintf(&b, "\n-- %s.%s references %s.%s",
				rel.SourceTable, rel.SourceColumn, rel.TargetTable, rel.TargetColumn)
			if rel.Description != "" {
				b.WriteString(": " + rel.Description)
			}
		}
	}
	return b.String(), true
}

func renderCreateTable(b *strings.Builder, t Table) {
	if t.Description != "" {
		fmt.Fprintf(b, "-- %s\n", t.Description)
	}
	fmt.Fprintf(b, "CREATE TABLE %s (\n", t.Name)
	for i, col := range t.Columns {
		fmt.Fprintf(b, "    %s %s", col.Name, col.Type)
		if col.IsPrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if i < len(t.Columns)-1 {
			b.WriteString(",")
		}
		if col.Description != "" {
			b.WriteString(" -- " + col.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString(");\n")
}

// DefaultCatalog returns a catalog seeded with the recipe analytics
// schema under the "default" connection ID.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register("default", recipeTables, recipeRelationships)
	return c
}

var recipeTables = []Table{
	{
		Name:        "dishes",
		Description: "菜品主表，记录每道菜的基础信息",
		Columns: []Column{
			{Name: "id", Type: "BIGINT", IsPrimaryKey: true, Description: "菜品ID"},
			{Name: "name", Type: "VARCHAR(128)", Description: "菜品名称"},
			{Name: "dish_type", Type: "VARCHAR(64)", Description: "菜品类型，如热菜、凉菜"},
			{Name: "flavor", Type: "VARCHAR(64)", Description: "口味，如麻辣、咸鲜"},
			{Name: "cooking_method", Type: "VARCHAR(64)", Description: "烹饪工艺，如炒、炖"},
			{Name: "cook_time_minutes", Type: "INT", Description: "烹饪耗时（分钟）"},
			{Name: "created_at", Type: "TIMESTAMPTZ", Description: "入库时间"},
		},
	},
	{
		Name:        "ingredients",
		Description: "食材表",
		Columns: []Column{
			{Name: "id", Type: "BIGINT", IsPrimaryKey: true, Description: "食材ID"},
			{Name: "name", Type: "VARCHAR(128)", Description: "食材名称"},
			{Name: "category", Type: "VARCHAR(64)", Description: "食材分类，如肉类、蔬菜"},
		},
	},
	{
		Name:        "dish_ingredients",
		Description: "菜品与食材的关联表，记录主辅料与用量",
		Columns: []Column{
			{Name: "dish_id", Type: "BIGINT", IsForeignKey: true, Description: "菜品ID"},
			{Name: "ingredient_id", Type: "BIGINT", IsForeignKey: true, Description: "食材ID"},
			{Name: "is_main", Type: "BOOLEAN", Description: "是否主料"},
			{Name: "amount_text", Type: "VARCHAR(64)", Description: "用量原文，如500克"},
		},
	},
	{
		Name:        "query_logs",
		Description: "用户提问日志，用于使用统计",
		Columns: []Column{
			{Name: "id", Type: "BIGINT", IsPrimaryKey: true, Description: "日志ID"},
			{Name: "session_id", Type: "VARCHAR(64)", Description: "会话ID"},
			{Name: "route", Type: "VARCHAR(32)", Description: "命中的查询路由"},
			{Name: "question", Type: "TEXT", Description: "用户问题"},
			{Name: "asked_at", Type: "TIMESTAMPTZ", Description: "提问时间"},
		},
	},
}

var recipeRelationships = []Relationship{
	{SourceTable: "dish_ingredients", SourceColumn: "dish_id", TargetTable: "dishes", TargetColumn: "id"},
	{SourceTable: "dish_ingredients", SourceColumn: "ingredient_id", TargetTable: "ingredients", TargetColumn: "id"},
}
