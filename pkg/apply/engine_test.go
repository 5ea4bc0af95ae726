// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
)

// scriptedDB is a fake db.DB that returns one scripted error (by
// SQLSTATE) the first time a given statement text is executed, then
// succeeds on every later attempt — enough to exercise the defer/retry
// round loop without a live connection.
type scriptedDB struct {
	onFirstRun map[string]string // sql -> sqlstate to fail with once
	seen       map[string]int
	executed   []string
}

func newScriptedDB(onFirstRun map[string]string) *scriptedDB {
	return &scriptedDB{onFirstRun: onFirstRun, seen: map[string]int{}}
}

func (f *scriptedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.seen[query]++
	if code, ok := f.onFirstRun[query]; ok && f.seen[query] == 1 {
		return nil, &pq.Error{Code: pq.ErrorCode(code), Message: "scripted failure"}
	}
	f.executed = append(f.executed, query)
	return nil, nil
}

func (f *scriptedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}

func (f *scriptedDB) WithRetryableTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return nil
}

func (f *scriptedDB) Close() error { return nil }

func stmt(id, sql string) Statement { return Statement{ID: id, FilePath: id, SQL: sql} }

// TestApplyDefersOnDependencyCode exercises spec.md §4.6 step 7: a
// statement that fails with a dependency-shaped SQLSTATE in round 1
// succeeds once re-tried in round 2.
func TestApplyDefersOnDependencyCode(t *testing.T) {
	a := stmt("a", "create table child(id int references parent(id));")
	b := stmt("b", "create table parent(id int primary key);")

	conn := newScriptedDB(map[string]string{a.SQL: "42P01"})
	res := Apply(context.Background(), conn, []Statement{a, b}, Options{SkipValidation: true})

	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (errors=%+v)", res.Status, res.Errors)
	}
	if len(res.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d: %+v", len(res.Rounds), res.Rounds)
	}
	if res.Rounds[0].Deferred != 1 || res.Rounds[0].Applied != 1 {
		t.Fatalf("round 1: expected 1 applied + 1 deferred, got %+v", res.Rounds[0])
	}
	if res.Rounds[1].Applied != 1 {
		t.Fatalf("round 2: expected the deferred statement to apply, got %+v", res.Rounds[1])
	}
}

// TestApplyHardFailsOnNonDependencyCode exercises the "other codes: hard
// failure" branch of spec.md §4.6 step 7.
func TestApplyHardFailsOnNonDependencyCode(t *testing.T) {
	a := stmt("a", "create table t(id int not null);")
	conn := newScriptedDB(map[string]string{a.SQL: "23505"}) // unique_violation, not a dependency code

	res := Apply(context.Background(), conn, []Statement{a}, Options{SkipValidation: true})
	if res.Status != StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	if len(res.Errors) != 1 || res.Errors[0].SQLSTATE != "23505" {
		t.Fatalf("expected one 23505 error, got %+v", res.Errors)
	}
}

// TestApplyStuckOnPermanentDependencyGap exercises "no progress -> stuck".
func TestApplyStuckOnPermanentDependencyGap(t *testing.T) {
	a := stmt("a", "alter table missing add column x int;")
	// Every attempt fails the same way: the dependency never arrives.
	conn := &alwaysDependencyErrorDB{}

	res := Apply(context.Background(), conn, []Statement{a}, Options{MaxRounds: 3, SkipValidation: true})
	if res.Status != StatusStuck {
		t.Fatalf("expected stuck, got %s", res.Status)
	}
}

type alwaysDependencyErrorDB struct{}

func (f *alwaysDependencyErrorDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if query == "SET check_function_bodies = off" {
		return nil, nil
	}
	return nil, &pq.Error{Code: "42P01", Message: "still missing"}
}
func (f *alwaysDependencyErrorDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}
func (f *alwaysDependencyErrorDB) WithRetryableTransaction(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return nil
}
func (f *alwaysDependencyErrorDB) Close() error { return nil }
