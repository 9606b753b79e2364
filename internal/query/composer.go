/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/database"
)

// DefaultRowLimit caps a plain table scan so the result grid stays
// bounded. Aggregated and joined queries are never capped.
const DefaultRowLimit = 500

// SchemaReader supplies the column metadata the composer needs to
// expand the projection of a joined table.
type SchemaReader interface {
	GetTableColumnsMetadata(ctx context.Context, tableName string) (*database.TableMetadata, error)
}

// Statement is a composed query plus its output column names in
// projection order, so a caller can render a grid without parsing the
// text back.
type Statement struct {
	Text    string
	Columns []string
}

// QuoteIdentifier quotes a SQL identifier for PostgreSQL, doubling any
// embedded double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Composer turns a table, its column metadata, and a stack of applied
// options into one safely quoted SELECT statement. Composition is
// pure: the same inputs always produce the same statement text.
type Composer struct {
	schema SchemaReader
	logger *zap.Logger
}

// NewComposer returns a Composer that reads joined-table metadata
// through schema.
func NewComposer(schema SchemaReader, logger *zap.Logger) *Composer {
	return &Composer{schema: schema, logger: logger}
}

func (c *Composer) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Compose assembles the SELECT statement for table under the given
// options and sort spec. baseColumns is the table's own metadata;
// joined tables are resolved through the SchemaReader. Join options
// are re-validated against baseColumns even though the UI should only
// offer foreign-key columns.
func (c *Composer) Compose(ctx context.Context, table string, baseColumns []database.Column, options []Option, sort *SortSpec) (*Statement, error) {
	var filters, joins, aggregates []Option
	for _, opt := range options {
		switch {
		case opt.Condition.IsFilter():
			filters = append(filters, opt)
		case opt.Condition.IsJoin():
			joins = append(joins, opt)
		case opt.Condition.IsAggregate():
			aggregates = append(aggregates, opt)
		default:
			c.log().Debug("skipping option with unknown condition",
				zap.String("condition", string(opt.Condition)))
		}
	}

	if err := validateJoins(baseColumns, joins); err != nil {
		return nil, err
	}

	// Qualified column references are only needed once a second table
	// enters the statement.
	qualify := len(joins) > 0

	selectClause, outputColumns, err := c.buildSelectClause(ctx, table, baseColumns, joins, aggregates, qualify)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectClause)
	b.WriteString(" FROM ")
	b.WriteString(buildFromClause(table, joins))
	if whereClause := c.buildWhereClause(filters); whereClause != "" {
		b.WriteString(" WHERE ")
		b.WriteString(whereClause)
	}
	if orderByClause := c.buildOrderByClause(table, sort, qualify, len(aggregates) > 0); orderByClause != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderByClause)
	}
	if len(aggregates) == 0 && len(joins) == 0 {
		fmt.Fprintf(&b, " LIMIT %d", DefaultRowLimit)
	}

	return &Statement{Text: b.String(), Columns: outputColumns}, nil
}

// validateJoins confirms every join option still matches a foreign-key
// column of the base table, including the recorded target.
func validateJoins(baseColumns []database.Column, joins []Option) error {
	for _, join := range joins {
		col, ok := findColumn(baseColumns, join.ColumnName)
		if !ok || !col.IsForeignKey ||
			col.ForeignKeyTable != join.JoinToTable ||
			col.ForeignKeyColumn != join.JoinToColumn {
			return &InvalidJoinError{Column: join.ColumnName}
		}
	}
	return nil
}

func findColumn(columns []database.Column, name string) (database.Column, bool) {
	for _, col := range columns {
		if col.Name == name {
			return col, true
		}
	}
	return database.Column{}, false
}

func (c *Composer) buildSelectClause(ctx context.Context, table string, baseColumns []database.Column, joins, aggregates []Option, qualify bool) (string, []string, error) {
	if len(aggregates) > 0 {
		return c.buildAggregateSelect(table, aggregates)
	}

	var exprs []string
	var outputs []string

	for _, col := range baseColumns {
		expr, name := columnExpr(table, col.Name, qualify)
		exprs = append(exprs, expr)
		outputs = append(outputs, name)
	}

	for _, joinTable := range distinctJoinTables(joins) {
		metadata, err := c.schema.GetTableColumnsMetadata(ctx, joinTable)
		if err != nil {
			c.log().Warn("could not read joined table columns, omitting them from the projection",
				zap.String("table", joinTable),
				zap.Error(err))
			continue
		}
		for _, col := range metadata.Columns {
			expr, name := columnExpr(joinTable, col.Name, qualify)
			exprs = append(exprs, expr)
			outputs = append(outputs, name)
		}
	}

	if len(exprs) == 0 {
		return "", nil, &EmptyProjectionError{Table: table}
	}
	return strings.Join(exprs, ", "), outputs, nil
}

func (c *Composer) buildAggregateSelect(table string, aggregates []Option) (string, []string, error) {
	var exprs []string
	var outputs []string

	for _, agg := range aggregates {
		if agg.ColumnName == "" {
			c.log().Debug("skipping aggregate with no column",
				zap.String("condition", string(agg.Condition)))
			continue
		}
		fn := strings.ToUpper(string(agg.Condition))
		var expr, alias string
		if agg.ColumnName == "*" {
			alias = "count_all"
			expr = fn + "(*) AS " + QuoteIdentifier(alias)
		} else {
			alias = string(agg.Condition) + "_" + agg.ColumnName
			expr = fn + "(" + QuoteIdentifier(agg.ColumnName) + ") AS " + QuoteIdentifier(alias)
		}
		exprs = append(exprs, expr)
		outputs = append(outputs, alias)
	}

	if len(exprs) == 0 {
		return "", nil, &EmptyProjectionError{Table: table}
	}
	return strings.Join(exprs, ", "), outputs, nil
}

// columnExpr renders one projected column. In qualified mode the
// column is aliased to table.column so same-named columns from joined
// tables stay distinguishable in the result grid.
func columnExpr(table, column string, qualify bool) (expr, output string) {
	if !qualify {
		return QuoteIdentifier(column), column
	}
	output = table + "." + column
	expr = QuoteIdentifier(table) + "." + QuoteIdentifier(column) + " AS " + QuoteIdentifier(output)
	return expr, output
}

// distinctJoinTables lists the join target tables in first-appearance
// order, each once.
func distinctJoinTables(joins []Option) []string {
	var tables []string
	seen := make(map[string]bool)
	for _, join := range joins {
		if seen[join.JoinToTable] {
			continue
		}
		seen[join.JoinToTable] = true
		tables = append(tables, join.JoinToTable)
	}
	return tables
}

func buildFromClause(table string, joins []Option) string {
	var b strings.Builder
	b.WriteString(QuoteIdentifier(table))
	for _, join := range joins {
		fmt.Fprintf(&b, " %s %s ON %s.%s = %s.%s",
			join.Condition.String(),
			QuoteIdentifier(join.JoinToTable),
			QuoteIdentifier(table), QuoteIdentifier(join.ColumnName),
			QuoteIdentifier(join.JoinToTable), QuoteIdentifier(join.JoinToColumn))
	}
	return b.String()
}

// buildWhereClause conjoins the filter predicates. Malformed filters
// are skipped so a half-filled form never aborts composition. Values
// are escaped as literals, never interpolated raw.
func (c *Composer) buildWhereClause(filters []Option) string {
	var predicates []string
	for _, filter := range filters {
		if filter.ColumnName == "" || !validWhereOperator(filter.WhereOperator) {
			c.log().Debug("skipping malformed filter",
				zap.String("column", filter.ColumnName),
				zap.String("operator", filter.WhereOperator))
			continue
		}
		column := QuoteIdentifier(filter.ColumnName)
		if !OperatorTakesValue(filter.WhereOperator) {
			predicates = append(predicates, column+" "+filter.WhereOperator)
			continue
		}
		if filter.WhereValue == "" {
			c.log().Debug("skipping filter with missing value",
				zap.String("column", filter.ColumnName),
				zap.String("operator", filter.WhereOperator))
			continue
		}
		predicates = append(predicates, column+" "+filter.WhereOperator+" "+pq.QuoteLiteral(filter.WhereValue))
	}
	return strings.Join(predicates, " AND ")
}

func (c *Composer) buildOrderByClause(table string, sort *SortSpec, qualify, hasAggregates bool) string {
	if sort == nil || sort.Column == "" {
		return ""
	}
	if hasAggregates {
		c.log().Debug("dropping sort, aggregates collapse the row set",
			zap.String("column", sort.Column))
		return ""
	}
	column := sort.Column
	if qualify && !strings.Contains(column, ".") {
		column = table + "." + column
	}
	direction := sort.Direction
	if direction != SortDesc {
		direction = SortAsc
	}
	return QuoteIdentifier(column) + " " + string(direction)
}
