package targets

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/config"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
)

// isResourceExhaustionError returns true if the error is caused by resource limits
// (timeout, recursion depth) rather than a semantic bug.
func isResourceExhaustionError(err error) bool {
	var rerr *evaluator.RuntimeError
	if !errors.As(err, &rerr) {
		return false
	}
	return rerr.Kind == evaluator.RecursionLimit || rerr.Kind == evaluator.Cancelled
}

// hasNonFinite reports whether ent contains a NaN or infinite number
// literal. Those render as identifiers, so they do not survive a
// print/parse round trip.
func hasNonFinite(ent ast.Entity) bool {
	switch ent := ent.(type) {
	case *ast.Number:
		return math.IsNaN(ent.Value) || math.IsInf(ent.Value, 0)
	case *ast.List:
		for _, e := range ent.Elements {
			if hasNonFinite(e) {
				return true
			}
		}
	case *ast.Expression:
		for _, e := range ent.Args {
			if hasNonFinite(e) {
				return true
			}
		}
	}
	return false
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// LoadCorpus loads all source files from the given directories and adds them to the fuzz corpus.
func LoadCorpus(f *testing.F, dirs ...string) {
	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isSourceFile(path) {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				f.Add(data)
			}
			return nil
		})
		if err != nil {
			// It's okay if we can't load examples, just log it
			f.Logf("Failed to load corpus from %s: %v", dir, err)
		}
	}
}
