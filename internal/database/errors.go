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
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every public operation when no live
// connection is held. Recoverable by calling Connect again.
var ErrNotConnected = errors.New("not connected to the database")

// SchemaError represents a failed catalog read.
type SchemaError struct {
	Msg string
	Err error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema error: %s", e.Msg)
	}
	return fmt.Sprintf("schema error: %s: %v", e.Msg, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// QueryError represents a statement the database rejected. Err carries
// the driver's original error so the caller can surface its message,
// which is the most actionable information available to the operator.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution error: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
