// Command waitforpostgres blocks until the dashboard's Postgres backend
// accepts connections. It is used by compose and CI before starting the
// server or the integration tests.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("TEST_POSTGRES_DSN")
	}
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL or TEST_POSTGRES_DSN is required")
		os.Exit(2)
	}

	timeout, err := waitTimeout(os.Getenv("WAIT_FOR_POSTGRES_TIMEOUT_SEC"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open postgres: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := waitReady(ctx, db, 2*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready within %s: %v\n", timeout, err)
		os.Exit(1)
	}
	fmt.Println("postgres ready")
}

func waitTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 60 * time.Second, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("invalid WAIT_FOR_POSTGRES_TIMEOUT_SEC: %q", raw)
	}
	return time.Duration(secs) * time.Second, nil
}

func waitReady(ctx context.Context, db *sql.DB, interval time.Duration) error {
	for {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(interval):
		}
	}
}
