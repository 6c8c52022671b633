package enricher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxContextFiles    = 8
	maxContextFileSize = 3000
)

// CookbookContextService gathers the repository context a cookbook
// generation prompt needs: README, example code, and representative
// source files in the repository's primary language.
type CookbookContextService struct{}

// NewCookbookContextService creates a new CookbookContextService.
func NewCookbookContextService() *CookbookContextService {
	return &CookbookContextService{}
}

// Gather collects README and example material for the given language.
func (s *CookbookContextService) Gather(ctx context.Context, repoPath, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sections []string

	if readme := s.readFile(filepath.Join(repoPath, "README.md")); readme != "" {
		sections = append(sections, "## README\n\n"+readme)
	}

	if examples := s.exampleFiles(repoPath, language); examples != "" {
		sections = append(sections, "## Example Code\n\n"+examples)
	}

	if sources := s.sourceFiles(repoPath, language); sources != "" {
		sections = append(sections, "## Representative Source Files\n\n"+sources)
	}

	if len(sections) == 0 {
		return "Repository at " + repoPath + " with primary language " + language, nil
	}

	return strings.Join(sections, "\n\n"), nil
}

// exampleFiles pulls files from conventional example directories first,
// since they are written to be copied.
func (s *CookbookContextService) exampleFiles(repoPath, language string) string {
	dirs := []string{"examples", "example", "samples", "docs/examples", "cookbook"}
	ext := extensionForLanguage(language)

	var contents []string
	for _, dir := range dirs {
		full := filepath.Join(repoPath, dir)
		entries, err := os.ReadDir(full)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || (ext != "" && filepath.Ext(entry.Name()) != ext) {
				continue
			}
			content := s.readFile(filepath.Join(full, entry.Name()))
			if content == "" {
				continue
			}
			contents = append(contents, "### "+filepath.Join(dir, entry.Name())+"\n```"+language+"\n"+content+"\n```")
			if len(contents) >= maxContextFiles {
				return strings.Join(contents, "\n\n")
			}
		}
	}

	return strings.Join(contents, "\n\n")
}

// sourceFiles picks a handful of top-level source files in the primary
// language as a fallback when the repository ships no examples.
func (s *CookbookContextService) sourceFiles(repoPath, language string) string {
	ext := extensionForLanguage(language)
	if ext == "" {
		return ""
	}

	var contents []string
	_ = filepath.Walk(repoPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" || name == "__pycache__" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ext {
			return nil
		}
		base := strings.ToLower(filepath.Base(path))
		if strings.Contains(base, "test") || strings.Contains(base, "spec") {
			return nil
		}

		content := s.readFile(path)
		if content == "" {
			return nil
		}
		rel, relErr := filepath.Rel(repoPath, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		contents = append(contents, "### "+rel+"\n```"+language+"\n"+content+"\n```")
		if len(contents) >= maxContextFiles {
			return filepath.SkipAll
		}
		return nil
	})

	return strings.Join(contents, "\n\n")
}

func (s *CookbookContextService) readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	content := string(data)
	if len(content) > maxContextFileSize {
		content = content[:maxContextFileSize] + "\n...[truncated]"
	}
	return strings.TrimSpace(content)
}

func extensionForLanguage(language string) string {
	switch language {
	case "go":
		return ".go"
	case "python":
		return ".py"
	case "javascript":
		return ".js"
	case "typescript":
		return ".ts"
	case "java":
		return ".java"
	case "rust":
		return ".rs"
	case "c":
		return ".c"
	case "csharp":
		return ".cs"
	case "ruby":
		return ".rb"
	default:
		return ""
	}
}
