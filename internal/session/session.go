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

// Package session tracks one interactive browse: the selected table,
// its column metadata, the stacked query options, and the sort state.
// It is the glue between a front end and the query composer, and is
// not safe for concurrent use.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/database"
	"github.com/GoogleCloudPlatform/db-query-browser/internal/query"
)

// Session is the mutable state of one browse against one connection.
type Session struct {
	conn     *database.Connection
	composer *query.Composer
	logger   *zap.Logger

	table    string
	metadata *database.TableMetadata
	options  []query.Option
	sort     *query.SortSpec
}

// New returns a Session composing queries against conn.
func New(conn *database.Connection, logger *zap.Logger) *Session {
	return &Session{
		conn:     conn,
		composer: query.NewComposer(conn, logger),
		logger:   logger,
	}
}

func (s *Session) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// SelectTable loads the metadata of table and makes it the browse
// target. Options and sort state from a previous table are discarded;
// they are meaningless against a different column set.
func (s *Session) SelectTable(ctx context.Context, table string) error {
	metadata, err := s.conn.GetTableColumnsMetadata(ctx, table)
	if err != nil {
		return err
	}
	s.table = table
	s.metadata = metadata
	s.options = nil
	s.sort = nil
	s.log().Debug("selected table", zap.String("table", table), zap.Int("columns", len(metadata.Columns)))
	return nil
}

// Table returns the selected table name, empty if none.
func (s *Session) Table() string {
	return s.table
}

// Metadata returns the selected table's column metadata, nil if no
// table is selected.
func (s *Session) Metadata() *database.TableMetadata {
	return s.metadata
}

// Options returns a copy of the applied options in application order.
func (s *Session) Options() []query.Option {
	out := make([]query.Option, len(s.options))
	copy(out, s.options)
	return out
}

// AddOption appends an already-validated option to the stack.
func (s *Session) AddOption(opt query.Option) error {
	if s.metadata == nil {
		return fmt.Errorf("no table selected")
	}
	s.options = append(s.options, opt)
	return nil
}

// AddJoin builds and appends a join option for the named column, which
// must be a foreign-key column of the selected table.
func (s *Session) AddJoin(cond query.Condition, columnName string) error {
	if s.metadata == nil {
		return fmt.Errorf("no table selected")
	}
	column, ok := s.metadata.Column(columnName)
	if !ok {
		return fmt.Errorf("table %q has no column %q", s.table, columnName)
	}
	opt, err := query.NewJoinOption(cond, column)
	if err != nil {
		return err
	}
	s.options = append(s.options, opt)
	return nil
}

// RemoveOption removes the option at index in the applied order.
func (s *Session) RemoveOption(index int) error {
	if index < 0 || index >= len(s.options) {
		return fmt.Errorf("no query option at index %d", index)
	}
	s.options = append(s.options[:index], s.options[index+1:]...)
	return nil
}

// ClearOptions discards every applied option.
func (s *Session) ClearOptions() {
	s.options = nil
}

// ToggleSort sorts by column ascending, or flips the direction when
// the same column is toggled again.
func (s *Session) ToggleSort(columnName string) error {
	if s.metadata == nil {
		return fmt.Errorf("no table selected")
	}
	if _, ok := s.metadata.Column(columnName); !ok {
		return fmt.Errorf("table %q has no column %q", s.table, columnName)
	}
	if s.sort != nil && s.sort.Column == columnName {
		if s.sort.Direction == query.SortAsc {
			s.sort.Direction = query.SortDesc
		} else {
			s.sort.Direction = query.SortAsc
		}
		return nil
	}
	s.sort = &query.SortSpec{Column: columnName, Direction: query.SortAsc}
	return nil
}

// SetSort replaces the sort spec outright.
func (s *Session) SetSort(columnName string, direction query.SortDirection) error {
	if s.metadata == nil {
		return fmt.Errorf("no table selected")
	}
	if _, ok := s.metadata.Column(columnName); !ok {
		return fmt.Errorf("table %q has no column %q", s.table, columnName)
	}
	s.sort = &query.SortSpec{Column: columnName, Direction: direction}
	return nil
}

// Sort returns the current sort spec, nil when unsorted.
func (s *Session) Sort() *query.SortSpec {
	if s.sort == nil {
		return nil
	}
	spec := *s.sort
	return &spec
}

// Fetch composes the query for the current state and executes it.
func (s *Session) Fetch(ctx context.Context) (*database.Result, error) {
	if s.metadata == nil {
		return nil, fmt.Errorf("no table selected")
	}
	stmt, err := s.composer.Compose(ctx, s.table, s.metadata.Columns, s.options, s.sort)
	if err != nil {
		return nil, err
	}
	return s.conn.Execute(ctx, stmt.Text)
}
