// Package formfile finds XForm files of a CHT project and parses them.
package formfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/beevik/etree"
	upgradehelper "github.com/jkuester/cht-upgrade-helper"
	"github.com/jkuester/cht-upgrade-helper/xform"
	"golang.org/x/sync/errgroup"
)

const formExt = ".xml"

// Discover returns the form files directly inside each of formDirs, resolved
// against baseDir. Files of one directory are sorted by name and missing
// directories are skipped. When names is not empty only forms whose base
// name (without extension) is listed are returned.
func Discover(baseDir string, formDirs []string, names []string) ([]string, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.TrimSuffix(name, formExt)] = true
	}

	var files []string

	for _, dir := range formDirs {
		dirPath := resolve(baseDir, dir)

		entries, err := os.ReadDir(dirPath)
		if os.IsNotExist(err) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read form directory %s: %w", dirPath, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), formExt) {
				continue
			}

			if len(wanted) > 0 && !wanted[strings.TrimSuffix(entry.Name(), formExt)] {
				continue
			}

			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}

	return files, nil
}

// IsFormFile reports whether arg names a form file rather than a form name
func IsFormFile(arg string) bool {
	return strings.HasSuffix(arg, formExt)
}

// Resolve resolves explicitly requested form files against baseDir
func Resolve(baseDir string, files []string) ([]string, error) {
	resolved := make([]string, 0, len(files))

	for _, file := range files {
		path := resolve(baseDir, file)

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("%w: %s", upgradehelper.ErrFormNotFound, path)
		}

		resolved = append(resolved, path)
	}

	return resolved, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(baseDir, path)
}

// ParseFile reads and parses a form file
func ParseFile(path string) (*etree.Document, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w %s: %w", upgradehelper.ErrParseForm, path, err)
	}

	return doc, nil
}

// DisplayID returns the identifier used for a form in reports: the path
// relative to baseDir, slash separated and prefixed with "./"
func DisplayID(baseDir, path string) string {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}

	return "./" + filepath.ToSlash(rel)
}

// Load parses every file concurrently, with at most parallel files in flight
// (0 means one per CPU). Sources are returned in the order of paths and the
// first parse failure aborts the load.
func Load(ctx context.Context, baseDir string, paths []string, parallel int) ([]xform.Source, error) {
	sources := make([]xform.Source, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(parallel))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := ParseFile(path)
			if err != nil {
				return err
			}

			sources[i] = xform.Source{ID: DisplayID(baseDir, path), Document: doc}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sources, nil
}

func limit(parallel int) int {
	if parallel <= 0 {
		return runtime.NumCPU()
	}

	return parallel
}
