package enricher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Well-known schema locations, relative to the repository root.
var schemaLocations = []string{
	"migrations",
	"db/migrations",
	"database/migrations",
	"sql",
	"schema",
	"db/schema",
	"models.py",
	"*/models.py",
	"db/schema.rb",
	"prisma/schema.prisma",
	"alembic/versions",
}

// Extensions that are schema definitions on their own.
var schemaExtensions = map[string]struct{}{
	".sql":    {},
	".prisma": {},
}

// File name fragments that mark ORM model or migration sources.
var schemaNameHints = []string{"schema", "models", "migration", "create_"}

// Source extensions searched for the name hints above.
var schemaSourceExtensions = map[string]struct{}{
	".py": {},
	".rb": {},
	".ts": {},
	".go": {},
}

const (
	maxSchemaReport    = 10000
	maxSchemaFileBytes = 2000
	maxDirFileBytes    = 500
	maxDirFiles        = 5
)

// DatabaseSchemaService detects and extracts database schemas from a repository.
type DatabaseSchemaService struct{}

// NewDatabaseSchemaService creates a new DatabaseSchemaService.
func NewDatabaseSchemaService() *DatabaseSchemaService {
	return &DatabaseSchemaService{}
}

// Discover scans a repository for database schema definitions and
// returns them as a markdown report.
func (s *DatabaseSchemaService) Discover(ctx context.Context, repoPath string) (string, error) {
	var sections []string
	appendSection := func(content string) {
		if content != "" {
			sections = append(sections, content)
		}
	}

	for _, pattern := range schemaLocations {
		matches, err := filepath.Glob(filepath.Join(repoPath, pattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			appendSection(s.extractSchemaContent(match))
		}
	}

	err := filepath.WalkDir(repoPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			switch entry.Name() {
			case "node_modules", ".git", "vendor":
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if _, ok := schemaExtensions[ext]; ok {
			appendSection(s.extractSchemaContent(path))
			return nil
		}

		if _, ok := schemaSourceExtensions[ext]; !ok {
			return nil
		}
		base := strings.ToLower(filepath.Base(path))
		for _, hint := range schemaNameHints {
			if strings.Contains(base, hint) {
				appendSection(s.extractSchemaContent(path))
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if len(sections) == 0 {
		return "No database schemas detected in the repository.", nil
	}

	result := strings.Join(sections, "\n\n---\n\n")
	if len(result) > maxSchemaReport {
		result = result[:maxSchemaReport] + "\n\n...[truncated]"
	}
	return result, nil
}

func (s *DatabaseSchemaService) extractSchemaContent(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		return s.extractFromDirectory(path)
	}
	return schemaSection(path, maxSchemaFileBytes)
}

// extractFromDirectory renders up to maxDirFiles schema-like files from
// a migrations-style directory.
func (s *DatabaseSchemaService) extractFromDirectory(dirPath string) string {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return ""
	}

	var contents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".sql", ".prisma", ".rb", ".py":
		default:
			continue
		}

		if section := schemaSection(filepath.Join(dirPath, entry.Name()), maxDirFileBytes); section != "" {
			contents = append(contents, section)
		}
		if len(contents) >= maxDirFiles {
			break
		}
	}

	return strings.Join(contents, "\n\n")
}

// schemaSection reads a file and renders it as a fenced markdown block,
// truncated to maxBytes.
func schemaSection(path string, maxBytes int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	content := string(data)
	if len(content) > maxBytes {
		content = content[:maxBytes] + "\n...[truncated]"
	}
	return "### " + filepath.Base(path) + "\n```\n" + content + "\n```"
}
