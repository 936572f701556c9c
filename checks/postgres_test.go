package checks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
)

type fakeConnector struct{ pingErr error }

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return fakeConn(c), nil
}
func (c fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{ pingErr error }

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }
func (c fakeConn) Ping(context.Context) error        { return c.pingErr }

func TestPostgresChecker_Probe(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		wantErr bool
	}{
		{"reachable", nil, false},
		{"unreachable", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := sql.OpenDB(fakeConnector{pingErr: tt.pingErr})
			defer db.Close()

			checker := NewPostgresCheckerFromDB("db", db)
			err := checker.Probe(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Probe() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("Probe() error = %v", err)
			}
		})
	}
}

func TestPostgresChecker_CloseLeavesSharedPool(t *testing.T) {
	db := sql.OpenDB(fakeConnector{})
	defer db.Close()

	checker := NewPostgresCheckerFromDB("db", db)
	if err := checker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Errorf("shared pool closed by checker: %v", err)
	}
}

func TestNewPostgresChecker(t *testing.T) {
	if _, err := NewPostgresChecker(PostgresCheckerConfig{Name: "db"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("missing dsn error = %v, want ErrInvalidConfig", err)
	}

	checker, err := NewPostgresChecker(PostgresCheckerConfig{Name: "db", DSN: "postgres://app@127.0.0.1:1/app?connect_timeout=1"})
	if err != nil {
		t.Fatalf("NewPostgresChecker() error = %v", err)
	}
	defer checker.Close()

	if checker.Type() != "postgres" {
		t.Errorf("Type() = %v, want postgres", checker.Type())
	}
	if err := checker.Probe(context.Background()); err == nil {
		t.Error("Probe() against closed port should fail")
	}
}
