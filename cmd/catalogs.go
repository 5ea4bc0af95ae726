// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pgcompare/pgcompare/internal/catalogio"
	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/dsl"
)

// loadCatalogPair reads the main and branch catalog documents used by
// every diff-consuming command (spec.md §1: catalog extraction is an
// external oracle; these commands take its output as a JSON document via
// internal/catalogio).
func loadCatalogPair(mainPath, branchPath string) (main, branch *catalog.Catalog, err error) {
	main, err = loadCatalog(mainPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading main catalog: %w", err)
	}
	branch, err = loadCatalog(branchPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading branch catalog: %w", err)
	}
	return main, branch, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalogio.Load(f)
}

// loadRules reads an optional pkg/dsl rule document; an empty path returns
// a zero-value CompiledDocument (no exclusions, no serialize overrides).
func loadRules(path string) (dsl.CompiledDocument, error) {
	if path == "" {
		return dsl.CompiledDocument{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return dsl.CompiledDocument{}, err
	}
	doc, err := dsl.ParseDocument(data)
	if err != nil {
		return dsl.CompiledDocument{}, err
	}
	return doc.Compile(), nil
}
