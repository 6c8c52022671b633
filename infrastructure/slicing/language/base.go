// Package language provides per-language analyzers for the slicer.
package language

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// Base carries the shared plumbing every analyzer needs: the language
// binding, a walker, and comment/path helpers.
type Base struct {
	language slicing.Language
	walker   slicing.Walker
}

// NewBase creates a new Base for the given language.
func NewBase(language slicing.Language) Base {
	return Base{
		language: language,
		walker:   slicing.NewWalker(),
	}
}

// Language returns the language this analyzer handles.
func (b Base) Language() slicing.Language { return b.language }

// Walker returns the AST walker.
func (b Base) Walker() slicing.Walker { return b.walker }

// NodeText extracts the text content of a node.
func (b Base) NodeText(node *sitter.Node, source []byte) string {
	return b.walker.NodeText(node, source)
}

// ExtractPrecedingComment collects the comment block immediately before
// a node and strips the comment markers.
func (b Base) ExtractPrecedingComment(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	var lines []string
	sibling := node.PrevSibling()
	for sibling != nil && b.walker.IsComment(sibling) {
		lines = append([]string{stripCommentMarkers(b.NodeText(sibling, source))}, lines...)
		sibling = sibling.PrevSibling()
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractFirstChildComment extracts a docstring that appears as the first
// statement of a node's body, the Python convention.
func (b Base) ExtractFirstChildComment(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}

	first := body.Child(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}

	str := b.walker.FindDescendant(first, "string")
	if str == nil {
		return ""
	}

	return stripStringQuotes(b.NodeText(str, source))
}

// BuildModulePathFromPath derives a dotted module path from a file path.
func (b Base) BuildModulePathFromPath(path, ext string) string {
	path = strings.TrimSuffix(path, ext)
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.Trim(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}

// BuildQualifiedName joins a module path and a simple name.
func (b Base) BuildQualifiedName(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}

func stripCommentMarkers(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			lines = append(lines, strings.TrimSpace(line))
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	for _, marker := range []string{"///", "//!", "//", "#"} {
		if strings.HasPrefix(text, marker) {
			return strings.TrimSpace(strings.TrimPrefix(text, marker))
		}
	}
	return text
}

func stripStringQuotes(text string) string {
	for _, quote := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) && len(text) >= 2*len(quote) {
			return strings.TrimSpace(text[len(quote) : len(text)-len(quote)])
		}
	}
	return strings.TrimSpace(text)
}
