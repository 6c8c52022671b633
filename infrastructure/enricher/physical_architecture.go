package enricher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	maxTreeDepth    = 4
	maxTreeEntries  = 200
	maxReadmeLength = 4000
)

// PhysicalArchitectureService builds a structural report of a repository:
// the directory layout, deployment manifests, and README excerpt that
// together describe its physical architecture.
type PhysicalArchitectureService struct{}

// NewPhysicalArchitectureService creates a new PhysicalArchitectureService.
func NewPhysicalArchitectureService() *PhysicalArchitectureService {
	return &PhysicalArchitectureService{}
}

// Discover walks the repository and returns a textual architecture report.
func (s *PhysicalArchitectureService) Discover(ctx context.Context, repoPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sections []string

	tree := s.directoryTree(repoPath)
	if tree != "" {
		sections = append(sections, "## Directory Structure\n\n```\n"+tree+"```")
	}

	manifests := s.deploymentManifests(repoPath)
	if manifests != "" {
		sections = append(sections, "## Deployment & Build Files\n\n"+manifests)
	}

	services := s.composeServices(repoPath)
	if services != "" {
		sections = append(sections, "## Container Topology\n\n"+services)
	}

	readme := s.readmeExcerpt(repoPath)
	if readme != "" {
		sections = append(sections, "## README Excerpt\n\n"+readme)
	}

	if len(sections) == 0 {
		return "No architectural information detected in the repository.", nil
	}

	return strings.Join(sections, "\n\n"), nil
}

// directoryTree renders a depth- and size-capped tree of the repository.
func (s *PhysicalArchitectureService) directoryTree(repoPath string) string {
	var b strings.Builder
	entries := 0

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > maxTreeDepth || entries >= maxTreeEntries {
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

		for _, item := range items {
			name := item.Name()
			if s.skipEntry(name) {
				continue
			}
			if entries >= maxTreeEntries {
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
			}
		}
	}

	walk(repoPath, 0)
	return b.String()
}

func (s *PhysicalArchitectureService) skipEntry(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "__pycache__", ".venv", "venv", "dist", "build", "target":
		return true
	}
	return strings.HasPrefix(name, ".") && name != ".github"
}

// deploymentManifests lists build and deployment files found at well-known
// locations, which usually pin down the physical topology.
func (s *PhysicalArchitectureService) deploymentManifests(repoPath string) string {
	candidates := []string{
		"Dockerfile",
		"docker-compose.yml",
		"docker-compose.yaml",
		"Makefile",
		"go.mod",
		"package.json",
		"pyproject.toml",
		"setup.py",
		"Cargo.toml",
		"pom.xml",
		"build.gradle",
		"helm",
		"charts",
		"k8s",
		"kubernetes",
		"deploy",
		".github/workflows",
	}

	var found []string
	for _, candidate := range candidates {
		full := filepath.Join(repoPath, candidate)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if info.IsDir() {
			found = append(found, fmt.Sprintf("- %s/ (directory)", candidate))
		} else {
			found = append(found, fmt.Sprintf("- %s", candidate))
		}
	}

	return strings.Join(found, "\n")
}

// composeServices parses docker-compose files and summarizes each service:
// its image, published ports, and service dependencies.
func (s *PhysicalArchitectureService) composeServices(repoPath string) string {
	var files []string
	for _, pattern := range []string{"docker-compose*.yml", "docker-compose*.yaml", "compose.yml", "compose.yaml"} {
		matches, _ := filepath.Glob(filepath.Join(repoPath, pattern))
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return ""
	}

	var lines []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		var compose struct {
			Services map[string]struct {
				Image     string   `yaml:"image"`
				Ports     []string `yaml:"ports"`
				DependsOn []string `yaml:"depends_on"`
			} `yaml:"services"`
		}
		if err := yaml.Unmarshal(data, &compose); err != nil {
			lines = append(lines, fmt.Sprintf("- %s: unparseable compose file", filepath.Base(file)))
			continue
		}
		if len(compose.Services) == 0 {
			continue
		}

		names := make([]string, 0, len(compose.Services))
		for name := range compose.Services {
			names = append(names, name)
		}
		sort.Strings(names)

		lines = append(lines, fmt.Sprintf("%s defines %d services:", filepath.Base(file), len(names)))
		for _, name := range names {
			svc := compose.Services[name]
			entry := "- " + name
			if svc.Image != "" {
				entry += " (image: " + svc.Image + ")"
			}
			if len(svc.Ports) > 0 {
				entry += ", ports " + strings.Join(svc.Ports, ", ")
			}
			if len(svc.DependsOn) > 0 {
				entry += ", depends on " + strings.Join(svc.DependsOn, ", ")
			}
			lines = append(lines, entry)
		}
	}

	return strings.Join(lines, "\n")
}

// readmeExcerpt returns the start of the repository README, if present.
func (s *PhysicalArchitectureService) readmeExcerpt(repoPath string) string {
	names := []string{"README.md", "README.rst", "README.txt", "README", "readme.md"}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(repoPath, name))
		if err != nil {
			continue
		}
		content := string(data)
		if len(content) > maxReadmeLength {
			content = content[:maxReadmeLength] + "\n...[truncated]"
		}
		return content
	}
	return ""
}
