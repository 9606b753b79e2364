package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	syntaxErr := errors.New("syntax error at or near FROM")

	tests := []struct {
		name          string
		mockSetup     func(mock sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "Success case",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin()
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(1, "alpha").
					AddRow(2, "beta")
				mock.ExpectQuery("SELECT .* FROM \"users\"").WillReturnRows(rows)
				mock.ExpectCommit()
			},
			expectedError: false,
		},
		{
			name: "Begin fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin().WillReturnError(errors.New("begin failed"))
			},
			expectedError: true,
		},
		{
			name: "Query fails and rolls back",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT .* FROM \"users\"").WillReturnError(syntaxErr)
				mock.ExpectRollback()
			},
			expectedError: true,
		},
		{
			name: "Commit fails",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin()
				rows := sqlmock.NewRows([]string{"id"}).AddRow(1)
				mock.ExpectQuery("SELECT .* FROM \"users\"").WillReturnRows(rows)
				mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockConnection(t)
			defer c.Disconnect()

			tt.mockSetup(mock)

			_, err := c.Execute(ctx, `SELECT "id", "name" FROM "users" LIMIT 500`)
			if (err != nil) != tt.expectedError {
				t.Errorf("Execute() error = %v, expectedError %v", err, tt.expectedError)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestExecute_ResultShape(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockConnection(t)
	defer c.Disconnect()

	query := `SELECT "id", "name" FROM "users" LIMIT 500`
	expectHealthyCheck(mock)
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), []byte("alpha")).
		AddRow(int64(2), nil)
	mock.ExpectQuery("SELECT .* FROM \"users\"").WillReturnRows(rows)
	mock.ExpectCommit()

	result, err := c.Execute(ctx, query)
	if err != nil {
		t.Fatalf("Execute() returned unexpected error: %v", err)
	}

	// Column names come from the result descriptor, the query text is
	// echoed verbatim.
	if len(result.Columns) != 2 || result.Columns[0] != "id" || result.Columns[1] != "name" {
		t.Errorf("Columns = %v, want [id name]", result.Columns)
	}
	if result.Query != query {
		t.Errorf("Query = %q, want the executed text back", result.Query)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if name, ok := result.Rows[0][1].(string); !ok || name != "alpha" {
		t.Errorf("Rows[0][1] = %#v, want byte slice converted to string %q", result.Rows[0][1], "alpha")
	}
	if result.Rows[1][1] != nil {
		t.Errorf("Rows[1][1] = %#v, want nil for NULL", result.Rows[1][1])
	}
}

func TestExecute_PreservesOriginalError(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockConnection(t)
	defer c.Disconnect()

	original := errors.New("division by zero")
	expectHealthyCheck(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(original)
	mock.ExpectRollback()

	_, err := c.Execute(ctx, "SELECT 1/0")
	if err == nil {
		t.Fatalf("Execute() should fail")
	}
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error type = %T, want *QueryError", err)
	}
	if !errors.Is(err, original) {
		t.Errorf("error chain %v should preserve the original error", err)
	}
	if queryErr.Query != "SELECT 1/0" {
		t.Errorf("QueryError.Query = %q, want the failing statement", queryErr.Query)
	}
}

func TestExecute_RollbackFailureDoesNotMask(t *testing.T) {
	ctx := context.Background()
	c, mock := newMockConnection(t)
	defer c.Disconnect()

	original := errors.New("relation does not exist")
	expectHealthyCheck(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(original)
	mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

	_, err := c.Execute(ctx, `SELECT * FROM "missing"`)
	if !errors.Is(err, original) {
		t.Errorf("error = %v, want the original query error preserved", err)
	}
}

func TestExecute_NotConnected(t *testing.T) {
	c := &Connection{}
	_, err := c.Execute(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Execute() error = %v, want ErrNotConnected", err)
	}
}

func TestExec(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		mockSetup     func(mock sqlmock.Sqlmock)
		wantAffected  int64
		expectedError bool
	}{
		{
			name: "Success case",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 3))
				mock.ExpectCommit()
			},
			wantAffected: 3,
		},
		{
			name: "Exec fails and rolls back",
			mockSetup: func(mock sqlmock.Sqlmock) {
				expectHealthyCheck(mock)
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE users").WillReturnError(errors.New("constraint violation"))
				mock.ExpectRollback()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockConnection(t)
			defer c.Disconnect()

			tt.mockSetup(mock)

			affected, err := c.Exec(ctx, "UPDATE users SET active = true")
			if (err != nil) != tt.expectedError {
				t.Errorf("Exec() error = %v, expectedError %v", err, tt.expectedError)
			}
			if !tt.expectedError && affected != tt.wantAffected {
				t.Errorf("Exec() affected = %d, want %d", affected, tt.wantAffected)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}
