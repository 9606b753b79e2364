package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/config"
)

// Connection owns a single live database handle. It is not safe for
// concurrent use: callers run one statement at a time and serialize
// access themselves.
type Connection struct {
	Pool *sql.DB

	cfg    config.DatabaseConfig
	logger *zap.Logger
}

// New returns a Connection with no live handle. Connect must be called
// before any schema or query operation.
func New(logger *zap.Logger) *Connection {
	return &Connection{logger: logger}
}

func (c *Connection) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return zap.NewNop()
}

// Connect opens a pool for the given descriptor and verifies it with a
// ping. A live connection must be released with Disconnect before a new
// one can be opened; a handle discarded by a failed health check does
// not count as live.
func (c *Connection) Connect(ctx context.Context, cfg config.DatabaseConfig) error {
	if c.Pool != nil {
		return fmt.Errorf("already connected to database %q, disconnect first", c.cfg.DBName)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		pool *sql.DB
		err  error
	)
	if cfg.UsesCloudSQL() {
		pool, err = createCloudSQLPool(cfg)
	} else {
		pool, err = createStandardPool(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to database (ping failed): %w", err)
	}

	c.Pool = pool
	c.cfg = cfg
	c.log().Info("connected to database", zap.String("database", cfg.DBName))
	return nil
}

// Disconnect closes the live connection. Calling it with no open
// connection is a no-op.
func (c *Connection) Disconnect() error {
	if c.Pool == nil {
		return nil
	}
	err := c.Pool.Close()
	c.Pool = nil
	if err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	c.log().Info("disconnected from database", zap.String("database", c.cfg.DBName))
	return nil
}

// IsConnected performs a lightweight round trip against the live
// connection. Any failure is treated as a dead connection: the handle is
// discarded so that a subsequent Connect starts clean, without an
// explicit Disconnect.
func (c *Connection) IsConnected(ctx context.Context) bool {
	if c.Pool == nil {
		return false
	}

	var one int
	if err := c.Pool.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		c.log().Warn("connection health check failed, discarding handle",
			zap.String("database", c.cfg.DBName),
			zap.Error(err),
		)
		if closeErr := c.Pool.Close(); closeErr != nil {
			c.log().Warn("error closing dead connection", zap.Error(closeErr))
		}
		c.Pool = nil
		return false
	}
	return true
}

// Config returns the descriptor of the current (or most recent)
// connection.
func (c *Connection) Config() config.DatabaseConfig {
	return c.cfg
}

// sanityCheck guards every public operation: fail fast when no live
// connection exists or the health check reports it gone.
func (c *Connection) sanityCheck(ctx context.Context) error {
	if c.Pool == nil || !c.IsConnected(ctx) {
		return ErrNotConnected
	}
	return nil
}
