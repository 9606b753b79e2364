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
package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Column describes one column of a table. ForeignKeyTable and
// ForeignKeyColumn are set exactly when IsForeignKey is true.
type Column struct {
	Name             string
	DataType         string
	IsForeignKey     bool
	ForeignKeyTable  string
	ForeignKeyColumn string
}

// TableMetadata is one table's ordered column listing, in catalog
// ordinal position. It is rebuilt fresh on every fetch and never
// mutated.
type TableMetadata struct {
	TableName string
	Columns   []Column
}

// ColumnNames returns the column names in ordinal order.
func (m *TableMetadata) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name.
func (m *TableMetadata) Column(name string) (Column, bool) {
	for _, col := range m.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ListTables returns the table names of the public schema in
// lexicographic order. Catalog errors are masked into an empty list so
// an interactive caller stays responsive; they are logged instead.
func (c *Connection) ListTables(ctx context.Context) ([]string, error) {
	if err := c.sanityCheck(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		ORDER BY table_name;`

	rows, err := c.Pool.QueryContext(ctx, query)
	if err != nil {
		c.log().Warn("error querying tables, returning empty list", zap.Error(err))
		return []string{}, nil
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			c.log().Warn("error scanning table name, returning empty list", zap.Error(err))
			return []string{}, nil
		}
		tables = append(tables, tableName)
	}

	if err := rows.Err(); err != nil {
		c.log().Warn("error iterating table rows, returning empty list", zap.Error(err))
		return []string{}, nil
	}

	return tables, nil
}

// tableColumnsQuery reports every column of a table together with its
// single-column foreign-key target, in one pass. The column listing is
// left-joined against constraint metadata so columns without a foreign
// key come back with NULL targets.
const tableColumnsQuery = `
	SELECT
		c.column_name,
		c.data_type,
		fk.ref_table,
		fk.ref_column
	FROM information_schema.columns c
	LEFT JOIN (
		SELECT
			kcu.column_name AS fk_column,
			ccu.table_name AS ref_table,
			ccu.column_name AS ref_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND kcu.table_name = $1
			AND tc.table_schema = current_schema()
	) fk ON fk.fk_column = c.column_name
	WHERE c.table_schema = current_schema()
		AND c.table_name = $1
	ORDER BY c.ordinal_position;`

// GetTableColumnsMetadata fetches the column metadata of one table,
// including foreign-key targets, ordered by ordinal position.
func (c *Connection) GetTableColumnsMetadata(ctx context.Context, tableName string) (*TableMetadata, error) {
	if err := c.sanityCheck(ctx); err != nil {
		return nil, err
	}

	rows, err := c.Pool.QueryContext(ctx, tableColumnsQuery, tableName)
	if err != nil {
		return nil, &SchemaError{Msg: fmt.Sprintf("error querying columns for table %q", tableName), Err: err}
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			name      string
			dataType  string
			refTable  sql.NullString
			refColumn sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &refTable, &refColumn); err != nil {
			return nil, &SchemaError{Msg: "error scanning column metadata", Err: err}
		}

		// A composite foreign key yields one row per referenced column;
		// keep the first and flag the column like any other.
		if len(columns) > 0 && columns[len(columns)-1].Name == name {
			continue
		}

		col := Column{Name: name, DataType: dataType}
		if refTable.Valid && refColumn.Valid {
			col.IsForeignKey = true
			col.ForeignKeyTable = refTable.String
			col.ForeignKeyColumn = refColumn.String
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, &SchemaError{Msg: "error iterating column rows", Err: err}
	}

	if len(columns) == 0 {
		return nil, &SchemaError{Msg: fmt.Sprintf("table %q does not exist", tableName)}
	}

	return &TableMetadata{TableName: tableName, Columns: columns}, nil
}
