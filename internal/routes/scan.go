// Package routes finds GPX route files on disk for bulk training uploads.
package routes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hikepredict/internal/common/fsutil"
)

// Ext is the route file extension, matched case-insensitively.
const Ext = ".gpx"

// ScanDir returns the *.gpx files directly inside dir as absolute paths,
// sorted by name. Subdirectories are not descended into.
func ScanDir(dir string) ([]string, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() { continue }
		if !strings.EqualFold(filepath.Ext(e.Name()), Ext) { continue }
		out = append(out, filepath.Join(abs, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Expand turns command line arguments into route files. A directory
// contributes its GPX files; any other argument is kept as given so the
// picker can report what is wrong with it.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		p, err := fsutil.ExpandHome(a)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, a)
			continue
		}
		files, err := ScanDir(p)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no %s files in %s", Ext, a)
		}
		out = append(out, files...)
	}
	return out, nil
}
