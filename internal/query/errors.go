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

import "fmt"

// EmptyProjectionError reports that the applied options leave nothing
// to select, so no statement can be composed.
type EmptyProjectionError struct {
	Table string
}

func (e *EmptyProjectionError) Error() string {
	return fmt.Sprintf("query options for table %q produce no selectable expressions", e.Table)
}

// InvalidJoinError reports a join request against a column that does
// not carry a foreign-key constraint.
type InvalidJoinError struct {
	Column string
}

func (e *InvalidJoinError) Error() string {
	return fmt.Sprintf("column %q is not a foreign key column usable as a join source", e.Column)
}
