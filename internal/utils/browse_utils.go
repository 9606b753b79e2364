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
package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/query"
)

// ParseFilterExpr splits a --where flag value of the form
// "column operator value" into its parts. The null-check operators
// take no value; LIKE/ILIKE and the null checks are accepted in any
// case and normalized to upper. A value wrapped in single quotes has
// one layer of quotes stripped.
func ParseFilterExpr(expr string) (column, operator, value string, err error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) < 2 {
		return "", "", "", fmt.Errorf("filter %q must look like \"column operator [value]\"", expr)
	}
	column = fields[0]

	rest := strings.Join(fields[1:], " ")
	switch strings.ToUpper(rest) {
	case "IS NULL":
		return column, "IS NULL", "", nil
	case "IS NOT NULL":
		return column, "IS NOT NULL", "", nil
	}

	operator = fields[1]
	if upper := strings.ToUpper(operator); upper == "LIKE" || upper == "ILIKE" {
		operator = upper
	}
	if !knownOperator(operator) {
		return "", "", "", fmt.Errorf("unsupported filter operator %q", operator)
	}
	if len(fields) < 3 {
		return "", "", "", fmt.Errorf("filter operator %q requires a value", operator)
	}

	value = strings.Join(fields[2:], " ")
	if len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
		value = value[1 : len(value)-1]
	}
	return column, operator, value, nil
}

func knownOperator(op string) bool {
	for _, candidate := range query.WhereOperators {
		if op == candidate {
			return true
		}
	}
	return false
}

// WriteResultsFile saves rendered query results to filePath, adding a
// trailing newline if the content lacks one.
func WriteResultsFile(filePath, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
