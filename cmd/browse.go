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
package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/database"
	"github.com/GoogleCloudPlatform/db-query-browser/internal/query"
	"github.com/GoogleCloudPlatform/db-query-browser/internal/session"
	"github.com/GoogleCloudPlatform/db-query-browser/internal/utils"
)

var (
	whereExprs       []string
	leftJoinColumns  []string
	innerJoinColumns []string
	sumColumns       []string
	countColumns     []string
	avgColumns       []string
	maxColumns       []string
	minColumns       []string
	sortColumn       string
	sortDescending   bool
	browseOutputFile string
)

var browseCmd = &cobra.Command{
	Use:   "browse <table>",
	Short: "Query a table with filters, joins, aggregates, and sorting",
	Long: `Composes and runs a SELECT against one table. Filters, foreign-key
joins, and aggregates are stacked from flags; the executed SQL is
echoed alongside the results. Plain scans are capped at 500 rows.`,
	Example: `./db_query_browser browse orders --username user --password pass --database mydb \
    --where "amount > 5" --left-join customer_id --sort amount --desc`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tableName := args[0]

	conn, err := setupConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	sess := session.New(conn, logger)
	if err := sess.SelectTable(ctx, tableName); err != nil {
		return fmt.Errorf("failed to select table: %w", err)
	}

	if err := addBrowseOptions(sess); err != nil {
		return err
	}

	if sortColumn != "" {
		direction := query.SortAsc
		if sortDescending {
			direction = query.SortDesc
		}
		if err := sess.SetSort(sortColumn, direction); err != nil {
			return err
		}
	}

	result, err := sess.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	output := renderResult(result)
	fmt.Println(output)

	if browseOutputFile != "" {
		if err := utils.WriteResultsFile(browseOutputFile, output); err != nil {
			return err
		}
		fmt.Printf("Results written to: %s\n", browseOutputFile)
	}
	return nil
}

// addBrowseOptions translates the browse flags into validated query
// options, in flag order within each kind.
func addBrowseOptions(sess *session.Session) error {
	for _, expr := range whereExprs {
		column, operator, value, err := utils.ParseFilterExpr(expr)
		if err != nil {
			return err
		}
		opt, err := query.NewWhereOption(column, operator, value)
		if err != nil {
			return err
		}
		if err := sess.AddOption(opt); err != nil {
			return err
		}
	}

	for _, column := range leftJoinColumns {
		if err := sess.AddJoin(query.ConditionLeftJoin, column); err != nil {
			return err
		}
	}
	for _, column := range innerJoinColumns {
		if err := sess.AddJoin(query.ConditionInnerJoin, column); err != nil {
			return err
		}
	}

	aggregates := []struct {
		cond    query.Condition
		columns []string
	}{
		{query.ConditionSum, sumColumns},
		{query.ConditionCount, countColumns},
		{query.ConditionAvg, avgColumns},
		{query.ConditionMax, maxColumns},
		{query.ConditionMin, minColumns},
	}
	for _, agg := range aggregates {
		for _, column := range agg.columns {
			opt, err := query.NewAggregateOption(agg.cond, column)
			if err != nil {
				return err
			}
			if err := sess.AddOption(opt); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderResult formats the rows as a grid and appends the literal
// executed query, so the user always sees exactly what ran.
func renderResult(result *database.Result) string {
	t := table.NewWriter()

	header := make(table.Row, len(result.Columns))
	for i, name := range result.Columns {
		header[i] = name
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		t.AppendRow(table.Row(row))
	}

	var b strings.Builder
	b.WriteString(t.Render())
	fmt.Fprintf(&b, "\n\n%d row(s)\n", len(result.Rows))
	fmt.Fprintf(&b, "\nExecuted query:\n%s\n", result.Query)
	return b.String()
}

func init() {
	browseCmd.Flags().StringArrayVar(&whereExprs, "where", nil, `Filter, e.g. "amount > 5" or "name IS NOT NULL" (repeatable)`)
	browseCmd.Flags().StringArrayVar(&leftJoinColumns, "left-join", nil, "Foreign-key column to LEFT JOIN on (repeatable)")
	browseCmd.Flags().StringArrayVar(&innerJoinColumns, "inner-join", nil, "Foreign-key column to INNER JOIN on (repeatable)")
	browseCmd.Flags().StringArrayVar(&sumColumns, "sum", nil, "Column to SUM (repeatable)")
	browseCmd.Flags().StringArrayVar(&countColumns, "count", nil, `Column to COUNT, or "*" (repeatable)`)
	browseCmd.Flags().StringArrayVar(&avgColumns, "avg", nil, "Column to AVG (repeatable)")
	browseCmd.Flags().StringArrayVar(&maxColumns, "max", nil, "Column to MAX (repeatable)")
	browseCmd.Flags().StringArrayVar(&minColumns, "min", nil, "Column to MIN (repeatable)")
	browseCmd.Flags().StringVar(&sortColumn, "sort", "", "Column to order by")
	browseCmd.Flags().BoolVar(&sortDescending, "desc", false, "Sort descending instead of ascending")
	browseCmd.Flags().StringVarP(&browseOutputFile, "out", "o", "", "File path to save the results to (optional)")
}
