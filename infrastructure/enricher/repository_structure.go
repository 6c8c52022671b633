package enricher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	maxStructureDepth   = 5
	maxStructureEntries = 300
)

// RepositoryStructureService renders the directory layout of a repository
// as an indented tree, annotated with top-level file counts.
type RepositoryStructureService struct{}

// NewRepositoryStructureService creates a new RepositoryStructureService.
func NewRepositoryStructureService() *RepositoryStructureService {
	return &RepositoryStructureService{}
}

// Discover walks the repository and returns its directory tree.
func (s *RepositoryStructureService) Discover(ctx context.Context, repoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	entries := 0

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > maxStructureDepth || entries >= maxStructureEntries {
			return
		}

		items, err := os.ReadDir(dir)
		if err != nil {
			return
		}

		sort.Slice(items, func(i, j int) bool {
			if items[i].IsDir() != items[j].IsDir() {
				return items[i].IsDir()
			}
			return items[i].Name() < items[j].Name()
		})

		fileCount := 0
		for _, item := range items {
			name := item.Name()
			if skipStructureEntry(name) {
				continue
			}
			if entries >= maxStructureEntries {
				return
			}

			indent := strings.Repeat("  ", depth)
			if item.IsDir() {
				b.WriteString(indent + name + "/\n")
				entries++
				walk(filepath.Join(dir, name), depth+1)
			} else {
				b.WriteString(indent + name + "\n")
				entries++
				fileCount++
			}
		}
	}

	walk(repoPath, 0)

	tree := b.String()
	if tree == "" {
		return "Empty repository.", nil
	}
	return tree, nil
}

func skipStructureEntry(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "__pycache__", ".venv", "venv", "dist", "build", "target":
		return true
	}
	return strings.HasPrefix(name, ".")
}
