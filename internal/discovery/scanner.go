package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file types that may hold a configuration
var DefaultExtensions = []string{".json", ".txt"}

// Scanner scans for candidate configuration files in a directory
type Scanner struct {
	skipDirs   map[string]bool
	extensions map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	extMap := make(map[string]bool)
	for _, ext := range DefaultExtensions {
		extMap[ext] = true
	}
	return &Scanner{skipDirs: skipMap, extensions: extMap}
}

// Scan finds all candidate files under root. Whether a candidate really is a
// configuration is decided by Parser.Detect.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("config path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if s.extensions[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
