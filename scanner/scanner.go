// Package scanner implements the one-shot scan pipeline: it walks a source
// tree, extracts binding points per file with per-language regex tables,
// resolves imports into a dependency graph, and derives per-file risk scores
// plus an aggregate project health score. A scan is a pure function from
// (root path, project id) to an immutable ScanResult; the package keeps no
// global state of its own.
package scanner

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotDirectory is returned when the scan root does not exist or is not a
// directory. It is distinct from a successful scan of an empty tree, which
// yields a valid zero-node ScanResult.
var ErrNotDirectory = errors.New("not a directory")

// scan carries the mutable state of one pipeline run. Each stage fully
// completes before the next begins; nothing here survives past Scan.
type scan struct {
	root      string
	projectID string

	nodes    []*FileNode       // discovery order
	contents map[string]string // node id -> raw file content, extractor input only
	edges    []Edge
}

// Scan runs the full pipeline over root and returns the assembled snapshot.
// The context bounds only the optional git-history sub-step; the walk itself
// runs to completion.
func Scan(ctx context.Context, root, projectID string) (*ScanResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	if projectID == "" {
		projectID = ProjectID(abs)
	}

	s := &scan{
		root:      abs,
		projectID: projectID,
		contents:  make(map[string]string),
	}
	s.discover()
	s.extract()
	s.resolve()
	s.deriveTags()
	s.scoreRisk()
	s.applyHistory(ctx)
	s.markTests()
	s.classifyConcerns()
	return s.assemble(), nil
}

// ProjectID derives the stable project identifier from an absolute path.
func ProjectID(absPath string) string {
	sum := md5.Sum([]byte(absPath))
	return hex.EncodeToString(sum[:])[:12]
}

// fileID derives the stable node identifier from the project identity and the
// root-relative path, so rescans of an unchanged tree reproduce the same ids.
func fileID(projectID, relPath string) string {
	sum := md5.Sum([]byte(projectID + ":" + relPath))
	return hex.EncodeToString(sum[:])[:12]
}
