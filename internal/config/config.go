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
package config

import "fmt"

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Verbose  bool
}

// DatabaseConfig describes one database connection. It is an immutable
// value from the engine's point of view: the CLI builds it once from
// flags and environment, the connection layer only reads it.
type DatabaseConfig struct {
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// Default returns a configuration pre-filled with the usual local
// PostgreSQL settings. Flags in cmd override these.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// UsesCloudSQL reports whether the descriptor targets a Cloud SQL
// instance (dialed through the connector) rather than a host/port pair.
func (c DatabaseConfig) UsesCloudSQL() bool {
	return c.CloudSQLInstanceConnectionName != ""
}

// Validate checks that the descriptor carries enough information to open
// a connection. Host and port are not required on the Cloud SQL path,
// where the instance connection name replaces them.
func (c DatabaseConfig) Validate() error {
	if c.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.UsesCloudSQL() {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("database port %d is out of range", c.Port)
	}
	return nil
}
