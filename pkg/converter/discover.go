package converter

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MIDIExt is the case-sensitive extension of the files picked up from a package.
const MIDIExt = ".mid"

// Discover walks root and returns every *.mid file below it, sorted
// lexicographically. Hidden files and directories are skipped the way a
// shell glob skips them. Symlinked files are followed.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), MIDIExt) && isRegularFile(path, d.Type()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FindMappingFiles returns the non-hidden regular files (or links to them)
// in dir whose name ends in ext, sorted by name.
func FindMappingFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		if !isRegularFile(filepath.Join(dir, name), e.Type()) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// isRegularFile reports whether path is a regular file, following a symlink
// to its target. Dangling links are not files.
func isRegularFile(path string, mode fs.FileMode) bool {
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
