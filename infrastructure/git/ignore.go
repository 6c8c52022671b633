package git

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnorePattern decides which files under a working copy should be
// skipped during indexing. It combines the repository's gitignore rules
// with custom .noindex patterns from the working copy root.
type IgnorePattern struct {
	base         string
	gitMatcher   gitignore.Matcher
	noIndexRules []string
}

// NewIgnorePattern creates an IgnorePattern for the given base directory.
// Returns an error if the base directory does not exist or is not a directory.
func NewIgnorePattern(base string) (IgnorePattern, error) {
	info, err := os.Stat(base)
	if err != nil {
		return IgnorePattern{}, err
	}
	if !info.IsDir() {
		return IgnorePattern{}, &NotDirectoryError{Path: base}
	}

	pattern := IgnorePattern{base: base}

	// gitignore rules only apply inside an actual git working copy.
	if _, err := os.Stat(filepath.Join(base, ".git")); err == nil {
		if patterns, err := gitignore.ReadPatterns(osfs.New(base), nil); err == nil && len(patterns) > 0 {
			pattern.gitMatcher = gitignore.NewMatcher(patterns)
		}
	}

	if rules, err := loadNoIndexPatterns(filepath.Join(base, ".noindex")); err == nil {
		pattern.noIndexRules = rules
	}

	return pattern, nil
}

// ShouldIgnore checks if a path should be ignored. Directories are never
// ignored; files are ignored if they match gitignore rules or .noindex
// patterns, and anything under .git is always ignored.
func (p IgnorePattern) ShouldIgnore(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	relPath, err := filepath.Rel(p.base, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	if strings.HasPrefix(relPath, ".git") {
		return true
	}

	if p.gitMatcher != nil && p.gitMatcher.Match(strings.Split(relPath, "/"), false) {
		return true
	}

	return p.matchNoIndex(relPath)
}

// matchNoIndex checks the relative path against .noindex patterns. A
// pattern matches the whole path or any single path component.
func (p IgnorePattern) matchNoIndex(relPath string) bool {
	for _, pattern := range p.noIndexRules {
		if matched, err := filepath.Match(pattern, relPath); err == nil && matched {
			return true
		}
		for _, part := range strings.Split(relPath, "/") {
			if matched, err := filepath.Match(pattern, part); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// loadNoIndexPatterns reads patterns from a .noindex file, skipping
// blank lines and comments.
func loadNoIndexPatterns(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// NotDirectoryError indicates the path is not a directory.
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return "path is not a directory: " + e.Path
}
