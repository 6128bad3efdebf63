package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects plain-text documents.
var DefaultInclude = []string{"**/*.txt", "**/*.md"}

// DefaultMaxFileSize is the largest file submitted for analysis (256 KB).
const DefaultMaxFileSize int64 = 256 << 10

// skippedDirs are never descended into.
var skippedDirs = []string{
	".git",
	"node_modules",
	"vendor",
	".venv",
	".idea",
	".vscode",
}

// File is a document selected for analysis.
type File struct {
	Path    string // absolute path
	RelPath string // slash-separated, relative to the root
	Size    int64
	Hash    string // SHA-256 of the content
}

// Selection controls which files Collect returns.
type Selection struct {
	Root        string
	Include     []string // defaults to DefaultInclude
	Exclude     []string
	MaxFileSize int64 // 0 = DefaultMaxFileSize
}

// Collect walks sel.Root and returns the text files matching the include
// patterns and none of the exclude patterns. A root that is a file is
// returned as-is.
func Collect(sel Selection) ([]File, error) {
	root, err := filepath.Abs(sel.Root)
	if err != nil {
		return nil, fmt.Errorf("batch: resolve root: %w", err)
	}

	maxSize := sel.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	include := sel.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if !info.IsDir() {
		f, err := newFile(root, filepath.Base(root), info.Size())
		if err != nil {
			return nil, err
		}
		return []File{f}, nil
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && isSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(rel, include) || matchesAny(rel, sel.Exclude) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize || fi.Size() == 0 {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		f, err := newFile(path, rel, fi.Size())
		if err != nil {
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: traversal: %w", err)
	}
	return files, nil
}

func newFile(path, rel string, size int64) (File, error) {
	hash, err := hashFile(path)
	if err != nil {
		return File{}, fmt.Errorf("batch: hashing %s: %w", rel, err)
	}
	return File{Path: path, RelPath: rel, Size: size, Hash: hash}, nil
}

func isSkippedDir(name string) bool {
	for _, d := range skippedDirs {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

// matchesAny reports whether rel matches a pattern, either as a full path
// or by its base name.
func matchesAny(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.PathMatch(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinary reports whether the first 512 bytes contain a NUL byte.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
