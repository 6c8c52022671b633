package language

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// Go implements Analyzer for Go code.
type Go struct {
	Base
}

// NewGo creates a new Go analyzer.
func NewGo(language slicing.Language) *Go {
	return &Go{
		Base: NewBase(language),
	}
}

// FunctionName extracts the name from a function or method declaration.
func (g *Go) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return g.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic returns true if the name is exported.
func (g *Go) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

// IsMethod returns true for method_declaration nodes.
func (g *Go) IsMethod(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return node.Type() == "method_declaration"
}

// Docstring extracts the doc comment preceding a declaration.
func (g *Go) Docstring(node *sitter.Node, source []byte) string {
	return g.ExtractPrecedingComment(node, source)
}

// ModulePath builds the module path from the package clause, falling back
// to the file path.
func (g *Go) ModulePath(file slicing.ParsedFile) string {
	tree := file.Tree()
	if tree != nil {
		pkgNode := g.Walker().FindDescendant(tree.RootNode(), "package_clause")
		if pkgNode != nil {
			ident := g.Walker().FindDescendant(pkgNode, "package_identifier")
			if ident != nil {
				pkg := g.NodeText(ident, file.SourceCode())
				if pkg != "" {
					return pkg
				}
			}
		}
	}

	return g.BuildModulePathFromPath(file.Path(), ".go")
}

// Classes returns nil for Go (structs are reported as types).
func (g *Go) Classes(_ *sitter.Tree, _ []byte) []slicing.ClassDefinition {
	return nil
}

// Types extracts type declarations (structs, interfaces, aliases).
func (g *Go) Types(tree *sitter.Tree, source []byte) []slicing.TypeDefinition {
	if tree == nil {
		return nil
	}

	specNodes := g.Walker().CollectNodes(tree.RootNode(), []string{"type_spec"})
	types := make([]slicing.TypeDefinition, 0, len(specNodes))

	for _, node := range specNodes {
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := g.NodeText(nameNode, source)
		if name == "" {
			continue
		}

		kind := "alias"
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = "struct"
			case "interface_type":
				kind = "interface"
			}
		}

		// Doc comments attach to the enclosing type_declaration.
		docNode := node
		if parent := node.Parent(); parent != nil && parent.Type() == "type_declaration" {
			docNode = parent
		}

		types = append(types, slicing.NewTypeDefinition(
			"",
			docNode,
			docNode.StartByte(),
			docNode.EndByte(),
			name,
			name,
			kind,
			g.Docstring(docNode, source),
			nil,
		))
	}

	return types
}

// ExtractParameters extracts function parameters.
func (g *Go) ExtractParameters(node *sitter.Node, source []byte) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var result []string
	paramNodes := g.Walker().CollectNodes(params, []string{"parameter_declaration", "variadic_parameter_declaration"})
	for _, paramNode := range paramNodes {
		result = append(result, g.NodeText(paramNode, source))
	}

	return result
}

// ExtractReturnType extracts the result clause of a function.
func (g *Go) ExtractReturnType(node *sitter.Node, source []byte) string {
	result := node.ChildByFieldName("result")
	if result == nil {
		return ""
	}

	return strings.TrimSpace(g.NodeText(result, source))
}
