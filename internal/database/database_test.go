package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/GoogleCloudPlatform/db-query-browser/internal/config"
)

// Helper to create a Connection backed by a mock pool
func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	return &Connection{Pool: mockDb}, mock
}

func TestConnection_IsConnected(t *testing.T) {
	ctx := context.Background()

	t.Run("No pool", func(t *testing.T) {
		c := &Connection{}
		if c.IsConnected(ctx) {
			t.Errorf("IsConnected() = true, want false with no pool")
		}
	})

	t.Run("Healthy connection", func(t *testing.T) {
		c, mock := newMockConnection(t)
		defer c.Disconnect()

		rows := sqlmock.NewRows([]string{"?column?"}).AddRow(1)
		mock.ExpectQuery("SELECT 1").WillReturnRows(rows)

		if !c.IsConnected(ctx) {
			t.Errorf("IsConnected() = false, want true")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})

	t.Run("Failed check discards the handle", func(t *testing.T) {
		c, mock := newMockConnection(t)

		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		if c.IsConnected(ctx) {
			t.Errorf("IsConnected() = true, want false after failed check")
		}
		if c.Pool != nil {
			t.Errorf("Pool should be discarded after a failed check")
		}
		// A second check must not touch the closed pool.
		if c.IsConnected(ctx) {
			t.Errorf("IsConnected() = true after handle was discarded")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})
}

func TestConnection_Disconnect(t *testing.T) {
	t.Run("Idempotent with no pool", func(t *testing.T) {
		c := &Connection{}
		if err := c.Disconnect(); err != nil {
			t.Errorf("Disconnect() with no pool returned error: %v", err)
		}
	})

	t.Run("Closes and clears the pool", func(t *testing.T) {
		c, mock := newMockConnection(t)
		mock.ExpectClose()

		if err := c.Disconnect(); err != nil {
			t.Errorf("Disconnect() returned error: %v", err)
		}
		if c.Pool != nil {
			t.Errorf("Pool should be nil after Disconnect()")
		}
		// Second call is a no-op.
		if err := c.Disconnect(); err != nil {
			t.Errorf("second Disconnect() returned error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})
}

func TestConnection_Connect_AlreadyConnected(t *testing.T) {
	ctx := context.Background()
	c, _ := newMockConnection(t)
	defer c.Disconnect()

	cfg := config.DatabaseConfig{
		Host:   "localhost",
		Port:   5432,
		User:   "test_user",
		DBName: "test_db",
	}
	if err := c.Connect(ctx, cfg); err == nil {
		t.Errorf("Connect() with a live pool should fail")
	}
}

func TestConnection_Connect_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	if err := c.Connect(ctx, config.DatabaseConfig{}); err == nil {
		t.Errorf("Connect() with an empty config should fail")
	}
	if c.Pool != nil {
		t.Errorf("Pool should stay nil after a failed Connect()")
	}
}

func TestConnection_SanityCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("No pool", func(t *testing.T) {
		c := &Connection{}
		err := c.sanityCheck(ctx)
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("sanityCheck() error = %v, want ErrNotConnected", err)
		}
	})

	t.Run("Dead connection", func(t *testing.T) {
		c, mock := newMockConnection(t)
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("server closed the connection"))
		mock.ExpectClose()

		err := c.sanityCheck(ctx)
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("sanityCheck() error = %v, want ErrNotConnected", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations: %s", err)
		}
	})

	t.Run("Live connection", func(t *testing.T) {
		c, mock := newMockConnection(t)
		defer c.Disconnect()

		rows := sqlmock.NewRows([]string{"?column?"}).AddRow(1)
		mock.ExpectQuery("SELECT 1").WillReturnRows(rows)

		if err := c.sanityCheck(ctx); err != nil {
			t.Errorf("sanityCheck() returned unexpected error: %v", err)
		}
	})
}

func TestConnection_Config(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", DBName: "d"}
	c := &Connection{cfg: cfg}
	if got := c.Config(); got != cfg {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}
}
