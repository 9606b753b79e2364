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
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/database"
)

// Condition is one of the closed set of query modifiers a browse
// session can stack onto a table.
type Condition string

const (
	ConditionWhere     Condition = "where"
	ConditionLeftJoin  Condition = "left_join"
	ConditionInnerJoin Condition = "inner_join"
	ConditionSum       Condition = "sum"
	ConditionCount     Condition = "count"
	ConditionAvg       Condition = "avg"
	ConditionMax       Condition = "max"
	ConditionMin       Condition = "min"
)

// Valid reports whether c is a member of the closed condition set.
func (c Condition) Valid() bool {
	switch c {
	case ConditionWhere, ConditionLeftJoin, ConditionInnerJoin,
		ConditionSum, ConditionCount, ConditionAvg, ConditionMax, ConditionMin:
		return true
	}
	return false
}

// IsFilter reports whether c restricts rows.
func (c Condition) IsFilter() bool {
	return c == ConditionWhere
}

// IsJoin reports whether c pulls in a second table.
func (c Condition) IsJoin() bool {
	return c == ConditionLeftJoin || c == ConditionInnerJoin
}

// IsAggregate reports whether c collapses rows into a computed value.
func (c Condition) IsAggregate() bool {
	switch c {
	case ConditionSum, ConditionCount, ConditionAvg, ConditionMax, ConditionMin:
		return true
	}
	return false
}

// String renders the condition for display and for SQL keywords:
// uppercased, with underscores turned into spaces, so left_join
// becomes "LEFT JOIN".
func (c Condition) String() string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "_", " "))
}

// WhereOperators is the allow-list of comparison operators a WHERE
// option accepts, in display order.
var WhereOperators = []string{"=", "!=", "<", ">", "<=", ">=", "LIKE", "ILIKE", "IS NULL", "IS NOT NULL"}

// OperatorTakesValue reports whether op compares against a literal.
// The null checks stand alone.
func OperatorTakesValue(op string) bool {
	return op != "IS NULL" && op != "IS NOT NULL"
}

func validWhereOperator(op string) bool {
	for _, candidate := range WhereOperators {
		if op == candidate {
			return true
		}
	}
	return false
}

// Option is one applied query modifier. Only the fields relevant to
// its Condition are populated.
type Option struct {
	Condition     Condition
	ColumnName    string
	WhereOperator string
	WhereValue    string
	JoinToTable   string
	JoinToColumn  string
}

// NewWhereOption builds a validated filter option. The operator must
// come from WhereOperators and the value is required exactly when the
// operator compares against one.
func NewWhereOption(column, operator, value string) (Option, error) {
	if column == "" {
		return Option{}, fmt.Errorf("where option requires a column")
	}
	if !validWhereOperator(operator) {
		return Option{}, fmt.Errorf("invalid where operator %q", operator)
	}
	if OperatorTakesValue(operator) {
		if value == "" {
			return Option{}, fmt.Errorf("where operator %q requires a value", operator)
		}
	} else {
		value = ""
	}
	return Option{
		Condition:     ConditionWhere,
		ColumnName:    column,
		WhereOperator: operator,
		WhereValue:    value,
	}, nil
}

// NewJoinOption builds a join option sourced from a foreign-key
// column. The join target is taken from the column's constraint
// metadata, never from user input.
func NewJoinOption(cond Condition, column database.Column) (Option, error) {
	if !cond.IsJoin() {
		return Option{}, fmt.Errorf("condition %q is not a join", cond)
	}
	if !column.IsForeignKey || column.ForeignKeyTable == "" || column.ForeignKeyColumn == "" {
		return Option{}, &InvalidJoinError{Column: column.Name}
	}
	return Option{
		Condition:    cond,
		ColumnName:   column.Name,
		JoinToTable:  column.ForeignKeyTable,
		JoinToColumn: column.ForeignKeyColumn,
	}, nil
}

// NewAggregateOption builds an aggregate option. The "*" pseudo-column
// is allowed only for COUNT.
func NewAggregateOption(cond Condition, column string) (Option, error) {
	if !cond.IsAggregate() {
		return Option{}, fmt.Errorf("condition %q is not an aggregate", cond)
	}
	if column == "" {
		return Option{}, fmt.Errorf("aggregate %s requires a column", cond)
	}
	if column == "*" && cond != ConditionCount {
		return Option{}, fmt.Errorf("aggregate %s cannot target *", cond)
	}
	return Option{Condition: cond, ColumnName: column}, nil
}

// Describe renders the option for listings, e.g. "LEFT JOIN customer_id".
func (o Option) Describe() string {
	return fmt.Sprintf("%s %s", o.Condition, o.ColumnName)
}

// SortDirection is an ORDER BY direction.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortSpec names the single column a result set is ordered by.
type SortSpec struct {
	Column    string
	Direction SortDirection
}
