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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:     "describe <table>",
	Short:   "Show the columns of a table, including foreign keys",
	Long:    `Shows every column of a table with its data type and, for foreign-key columns, the referenced table and column.`,
	Example: `./db_query_browser describe orders --username user --password pass --database mydb`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tableName := args[0]

	conn, err := setupConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	metadata, err := conn.GetTableColumnsMetadata(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Type", "References"})
	for _, col := range metadata.Columns {
		references := ""
		if col.IsForeignKey {
			references = fmt.Sprintf("%s.%s", col.ForeignKeyTable, col.ForeignKeyColumn)
		}
		t.AppendRow(table.Row{col.Name, col.DataType, references})
	}
	fmt.Println(t.Render())
	return nil
}
