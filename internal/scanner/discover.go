package scanner

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
)

// candidate is one file that survived filtering, carrying both the
// absolute path handed to the analyzer and the repository-relative path
// used as its result key.
type candidate struct {
	abs      string
	rel      string
	priority bool
}

// discover walks the tree under root and returns every file in it,
// including files under excluded directories: those are filtered out
// later so they still count as discovered. Unreadable paths are skipped,
// not fatal.
func (s *Scanner) discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Op().Debug("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// filter drops files under excluded directories, excluded names,
// irregular files and oversized files, and tags the survivors with their
// priority. Returns the kept candidates and how many discovered files
// were dropped.
func (s *Scanner) filter(files []string, root string) ([]candidate, int) {
	kept := make([]candidate, 0, len(files))
	for _, p := range files {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if s.underExcludedDir(rel) {
			continue
		}
		name := filepath.Base(p)
		if s.isExcludedFile(name) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			logging.Op().Debug("skipping unreadable file", "path", p, "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			logging.Op().Debug("skipping irregular file", "path", p)
			continue
		}
		if info.Size() > s.maxFileSize {
			logging.Op().Debug("skipping large file", "path", p, "size", info.Size())
			continue
		}
		kept = append(kept, candidate{abs: p, rel: rel, priority: s.isPriority(name, rel)})
	}
	return kept, len(files) - len(kept)
}

// prioritize stable-partitions candidates so priority files come first
// while both groups keep their discovery order.
func prioritize(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].priority && !cands[j].priority
	})
}

// underExcludedDir reports whether any directory on the file's relative
// path names an excluded directory, so nothing under ".git" or
// "node_modules" is ever analyzed, however deeply nested.
func (s *Scanner) underExcludedDir(rel string) bool {
	dir := filepath.Dir(rel)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if s.isExcludedDir(part) {
			return true
		}
	}
	return false
}

// isExcludedDir matches a directory name against the non-wildcard
// exclusion entries. Wildcard entries only ever apply to files.
func (s *Scanner) isExcludedDir(name string) bool {
	for _, pattern := range s.exclusions {
		if strings.Contains(pattern, "*") {
			continue
		}
		if pattern == name {
			return true
		}
	}
	return false
}

func (s *Scanner) isExcludedFile(name string) bool {
	for _, pattern := range s.exclusions {
		if strings.HasPrefix(pattern, "*") {
			if strings.HasSuffix(name, pattern[1:]) {
				return true
			}
		} else if pattern == name {
			return true
		}
	}
	return false
}

// isPriority checks the file against the priority patterns: "*.ext"
// suffix patterns, "prefix*" patterns, path globs matched against the
// relative path, and exact filenames.
func (s *Scanner) isPriority(name, rel string) bool {
	for _, pattern := range s.priorityPatterns {
		switch {
		case strings.HasPrefix(pattern, "*") && strings.HasSuffix(name, pattern[1:]):
			return true
		case strings.HasSuffix(pattern, "*") && strings.HasPrefix(name, strings.TrimSuffix(pattern, "*")):
			return true
		case strings.Contains(pattern, "*"):
			if ok, _ := path.Match(pattern, filepath.ToSlash(rel)); ok {
				return true
			}
		case pattern == name:
			return true
		}
	}
	return false
}
