// SPDX-License-Identifier: Apache-2.0

// Package apply implements spec.md §4.6's declarative apply engine: turn a
// directory of .sql files into an ordered, round-based execution against a
// live database, deferring statements on dependency-shaped SQLSTATEs and
// surfacing everything else as a hard failure.
//
// Grounded on pkg/db/db.go's RDB for the retry-on-lock_timeout executor
// shape (generalized here to retry-as-defer on a wider SQLSTATE set), and
// on pkg/sql2pgroll/convert.go's parse-then-switch-on-node-type idiom for
// turning pg_query_go's AST into a typed statement class.
package apply

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is one discovered .sql file, path normalized to forward
// slashes and relative to the discovery root (spec.md §4.6 step 1).
type SourceFile struct {
	Path string
	SQL  string
}

// Discover walks root (a directory or a single file) for .sql files,
// returning them sorted by full path in case-insensitive byte order.
func Discover(root string) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		sql, err := os.ReadFile(root)
		if err != nil {
			return nil, err
		}
		return []SourceFile{{Path: filepath.ToSlash(root), SQL: string(sql)}}, nil
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sql") {
			return nil
		}
		sql, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, SourceFile{Path: filepath.ToSlash(rel), SQL: string(sql)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Path) < strings.ToLower(files[j].Path)
	})
	return files, nil
}
