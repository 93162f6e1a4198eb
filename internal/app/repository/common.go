package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CommonDB implements Store on top of database/sql for every SQL dialect
// the service supports. Queries are written with ? and rebound per driver.
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "sqlite3":
		placeholders = func(n int) string { return "?" }
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

var _ Store = (*CommonDB)(nil)

// rebind replaces each ? in query with the dialect placeholder
func (c *CommonDB) rebind(query string) string {
	if c.driverName != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(c.placeholders(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *CommonDB) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := c.db.ExecContext(ctx, c.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *CommonDB) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, c.rebind(query), args...)
}

func (c *CommonDB) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.rebind(query), args...)
}

// EnsureSchema executes idempotent DDL statements
func (c *CommonDB) EnsureSchema(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Ping verifies the connection is alive
func (c *CommonDB) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

// DriverName returns the sql driver the connection was opened with
func (c *CommonDB) DriverName() string {
	return c.driverName
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// dbTime normalises timestamps so values round-trip identically across drivers
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(*t), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode failed: %w", err)
	}
	return string(data), nil
}

func decodeJSON(data sql.NullString, v interface{}) error {
	if !data.Valid || data.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data.String), v); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}
