// Package loader provides functionality for loading ledger files with support
// for include directives. It can recursively resolve and merge multiple files
// into a single AST, handling relative paths and deduplication.
//
// The loader supports two modes of operation:
//   - Simple mode: Parses a single file with include directives preserved in the AST
//   - Follow mode: Recursively loads all included files and merges them into one AST
//
// When following includes, the loader resolves relative paths from the directory of
// the file containing the include directive, and deduplicates files that are included
// multiple times.
//
// Example usage:
//
//	// Load a single file without following includes
//	loader := loader.New()
//	tree, err := loader.Load(ctx, "main.beancount")
//
//	// Load with recursive include resolution
//	loader := loader.New(loader.WithFollowIncludes())
//	tree, err := loader.Load(ctx, "main.beancount")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haskoe/beancount-dansk/ast"
	"github.com/haskoe/beancount-dansk/parser"
)

// Loader handles loading and parsing of ledger files with optional include
// resolution. Configure it using functional options passed to New:
//
//	loader := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes determines whether to recursively load included files.
	// When false, only the specified file is parsed and ast.Includes is preserved.
	// When true, all included files are recursively loaded and merged into a single AST.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load and merge all
// included files. When enabled:
//   - All include directives are recursively resolved and loaded
//   - Relative paths are resolved from the directory of the including file
//   - All directives, options, and plugins are merged into a single AST
//   - The returned AST has ast.Includes set to nil (all includes resolved)
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load parses a ledger file with optional recursive include resolution.
func (l *Loader) Load(ctx context.Context, filename string) (*ast.AST, error) {
	if !l.FollowIncludes {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		tree, err := parser.ParseBytesWithFilename(ctx, filename, data)
		if err != nil {
			return nil, parser.NewParseError(filename, err)
		}
		return tree, nil
	}

	state := &loaderState{
		visited: make(map[string]bool),
	}

	return state.loadRecursive(ctx, filename)
}

// LoadBytes parses already-read content under the given filename, with the
// same include handling as Load. Includes resolve relative to the filename's
// directory, or the working directory for names without one (e.g. stdin).
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*ast.AST, error) {
	tree, err := parser.ParseBytesWithFilename(ctx, filename, data)
	if err != nil {
		return nil, parser.NewParseError(filename, err)
	}

	if !l.FollowIncludes || len(tree.Includes) == 0 {
		return tree, nil
	}

	state := &loaderState{
		visited: make(map[string]bool),
	}

	baseDir := filepath.Dir(filename)
	var includedASTs []*ast.AST
	for _, inc := range tree.Includes {
		includePath := inc.Filename
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		includedAST, err := state.loadRecursive(ctx, includePath)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}
		includedASTs = append(includedASTs, includedAST)
	}

	return mergeASTs(tree, includedASTs...), nil
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	visited map[string]bool // Absolute paths of files already loaded
}

// loadRecursive recursively loads a file and all its includes.
func (l *loaderState) loadRecursive(ctx context.Context, filename string) (*ast.AST, error) {
	// Absolute path for deduplication
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	// Same file included multiple times is only processed once.
	if l.visited[absPath] {
		return &ast.AST{}, nil
	}
	l.visited[absPath] = true

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	tree, err := parser.ParseBytesWithFilename(ctx, filename, data)
	if err != nil {
		return nil, parser.NewParseError(filename, err)
	}

	if len(tree.Includes) == 0 {
		tree.Includes = nil
		return tree, nil
	}

	// Recursively load all includes and merge
	baseDir := filepath.Dir(absPath)
	var includedASTs []*ast.AST

	for _, inc := range tree.Includes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Relative paths resolve from the including file's directory.
		includePath := inc.Filename
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		includedAST, err := l.loadRecursive(ctx, includePath)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}

		includedASTs = append(includedASTs, includedAST)
	}

	return mergeASTs(tree, includedASTs...), nil
}

// mergeASTs combines a main AST with multiple included ASTs. The main AST's
// options take precedence over included files' options. All directives are
// combined and re-sorted by date.
func mergeASTs(main *ast.AST, included ...*ast.AST) *ast.AST {
	result := &ast.AST{
		Directives: make(ast.Directives, 0, len(main.Directives)),
		Options:    main.Options,
		Includes:   nil, // All includes resolved
		Plugins:    main.Plugins,
	}

	result.Directives = append(result.Directives, main.Directives...)

	for _, inc := range included {
		result.Directives = append(result.Directives, inc.Directives...)
		result.Plugins = append(result.Plugins, inc.Plugins...)
	}

	ast.SortDirectives(result)

	return result
}
