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

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Short:   "List the tables of the connected database",
	Long:    `Lists the base tables of the public schema in alphabetical order.`,
	Example: `./db_query_browser tables --username user --password pass --database mydb`,
	RunE:    runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	conn, err := setupConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	tables, err := conn.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if len(tables) == 0 {
		fmt.Println("No tables found.")
		return nil
	}
	for _, table := range tables {
		fmt.Println(table)
	}
	return nil
}
