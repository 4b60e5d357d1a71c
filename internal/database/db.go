// Package database opens the MySQL connection pool that every
// repository runs on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
)

// Pool defaults, overridable through DB_MAX_OPEN_CONNS,
// DB_MAX_IDLE_CONNS and DB_CONN_MAX_LIFETIME_MIN.
const (
	defaultMaxOpenConns   = 25
	defaultMaxIdleConns   = 25
	defaultConnLifetimeMn = 30
)

// Open builds the DSN, connects and verifies the connection with a
// short ping.  parseTime maps DATETIME columns onto time.Time and
// loc=UTC keeps archived_date and the created_at columns in the same
// zone the repositories write with UTC_TIMESTAMP().
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(poolInt("DB_MAX_OPEN_CONNS", defaultMaxOpenConns))
	db.SetMaxIdleConns(poolInt("DB_MAX_IDLE_CONNS", defaultMaxIdleConns))
	db.SetConnMaxLifetime(
		time.Duration(poolInt("DB_CONN_MAX_LIFETIME_MIN", defaultConnLifetimeMn)) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// poolInt reads a positive integer pool knob from the environment,
// falling back to def when unset or unparsable.
func poolInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
