// SPDX-License-Identifier: Apache-2.0

// Package testutils provides the shared container-lifecycle test helpers
// pkg/apply's integration tests use, grounded on the teacher's
// pkg/testutils/util.go SharedTestMain/setupTestDatabase pattern. Where the
// teacher's helpers hand callers a *roll.Roll bound to pgroll's versioned
// migration state, these hand callers a live *sql.DB plus pkg/apply's own
// BuildPlan+Apply pipeline, since this pipeline has no migration-history
// state of its own to stand up (spec.md §5: "no outer transaction... the
// apply engine has no state beyond the database session").
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pgcompare/pgcompare/pkg/apply"
	"github.com/pgcompare/pgcompare/pkg/db"
)

// The version of postgres against which the tests are run if the
// POSTGRES_VERSION environment variable is not set.
const defaultPostgresVersion = "15.3"

// tConnStr holds the connection string to the test container created in TestMain.
var tConnStr string

// SharedTestMain starts a postgres container to be used by all tests in a package.
// Each test then connects to the container and creates a new database.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:"+pgVersion),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		os.Exit(1)
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

// TestSchema returns the schema declarative-apply tests target. By
// default, that's the "public" schema.
func TestSchema() string {
	testSchema := os.Getenv("PGCOMPARE_TEST_SCHEMA")
	if testSchema != "" {
		return testSchema
	}
	return "public"
}

// WithConnectionToContainer hands fn a connection to a freshly created
// database in the shared test container, and the connection string that
// reaches it.
func WithConnectionToContainer(t *testing.T, fn func(conn *sql.DB, connStr string)) {
	t.Helper()

	conn, connStr, _ := setupTestDatabase(t)

	fn(conn, connStr)
}

// WithAppliedSQL discovers, plans, and applies the .sql tree rooted at
// sqlDir against a fresh container database (spec.md §4.6's full pipeline:
// discover, split, classify, build graph, topologically sort, round-apply),
// then hands fn the resulting connection and apply.Result.
func WithAppliedSQL(t *testing.T, sqlDir string, opts apply.Options, fn func(conn *sql.DB, result *apply.Result)) {
	t.Helper()
	ctx := context.Background()

	conn, _, _ := setupTestDatabase(t)

	plan, err := apply.BuildPlan(sqlDir)
	if err != nil {
		t.Fatalf("building apply plan for %s: %v", sqlDir, err)
	}
	if plan.Diagnostics.HasFatal() {
		t.Fatalf("apply plan for %s has fatal diagnostics: %+v", sqlDir, plan.Diagnostics)
	}

	result := apply.Apply(ctx, &db.RDB{DB: conn}, plan.Statements, opts)

	fn(conn, result)
}

// setupTestDatabase creates a new database in the test container and returns:
// - a connection to the new database
// - the connection string to the new database
// - the name of the new database
func setupTestDatabase(t *testing.T) (*sql.DB, string, string) {
	t.Helper()
	ctx := context.Background()

	tDB, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := tDB.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	dbName := randomDBName()

	_, err = tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	u.Path = "/" + dbName
	connStr := u.String()

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	return conn, connStr, dbName
}
