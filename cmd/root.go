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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/config"
	"github.com/GoogleCloudPlatform/db-query-browser/internal/database"
)

var (
	cfgFile string
	verbose bool

	// Database connection flags
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	sslMode                        string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool
)

var (
	appConfig *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "db_query_browser",
	Short: "Browse PostgreSQL tables and compose queries from the command line",
	Long: `db_query_browser inspects a PostgreSQL database's schema and composes
safe SELECT queries from structured options: filters, foreign-key joins,
aggregates, and sorting. It never interpolates free-text SQL fragments.`,
	PersistentPreRunE: initFlagsAndConfig,
}

// initFlagsAndConfig resolves the effective configuration. Values are
// read through viper so precedence is flag, then DBQB_* environment
// variable, then config file, then flag default.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	cfg := config.Default()
	cfg.Database.Host = viper.GetString("host")
	cfg.Database.Port = viper.GetInt("port")
	cfg.Database.User = viper.GetString("username")
	cfg.Database.Password = viper.GetString("password")
	cfg.Database.DBName = viper.GetString("database")
	cfg.Database.SSLMode = viper.GetString("sslmode")
	cfg.Database.CloudSQLInstanceConnectionName = viper.GetString("cloudsql-instance-connection-name")
	cfg.Database.UsePrivateIP = viper.GetBool("cloudsql-use-private-ip")
	cfg.Verbose = viper.GetBool("verbose")
	appConfig = cfg

	var err error
	if cfg.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// setupConnection opens the database connection described by the
// resolved configuration. The caller owns the returned connection and
// must Disconnect it.
func setupConnection(ctx context.Context) (*database.Connection, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("configuration is not initialized")
	}
	conn := database.New(logger)
	if err := conn.Connect(ctx, appConfig.Database); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Database connection flags
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 5432, "Database port")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name - MANDATORY")
	rootCmd.PersistentFlags().StringVar(&sslMode, "sslmode", "disable", "PostgreSQL sslmode setting")
	rootCmd.PersistentFlags().StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (project:region:instance), uses the Cloud SQL connector instead of host/port")
	rootCmd.PersistentFlags().BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for the Cloud SQL connection")

	viper.SetEnvPrefix("DBQB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))

	// Add subcommands
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(browseCmd)
}
