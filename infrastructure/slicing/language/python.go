package language

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// Python implements Analyzer for Python code.
type Python struct {
	Base
}

// NewPython creates a new Python analyzer.
func NewPython(language slicing.Language) *Python {
	return &Python{
		Base: NewBase(language),
	}
}

// FunctionName extracts the function name from a function_definition node.
func (p *Python) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return p.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic returns true if the function name does not start with underscore.
func (p *Python) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return !strings.HasPrefix(name, "_")
}

// IsMethod returns false for Python (methods are extracted within class walk).
func (p *Python) IsMethod(_ *sitter.Node) bool {
	return false
}

// Docstring extracts the docstring from a function or class.
func (p *Python) Docstring(node *sitter.Node, source []byte) string {
	return p.ExtractFirstChildComment(node, source)
}

// ModulePath builds the module path from file information.
func (p *Python) ModulePath(file slicing.ParsedFile) string {
	return p.BuildModulePathFromPath(file.Path(), ".py")
}

// Classes extracts class definitions from the AST.
func (p *Python) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := p.Walker().CollectNodes(tree.RootNode(), []string{"class_definition"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, p.extractClass(node, source))
	}

	return classes
}

// Types returns nil for Python (no standalone type definitions).
func (p *Python) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}

func (p *Python) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = p.NodeText(nameNode, source)
	}

	docstring := p.Docstring(node, source)
	bases := p.extractBases(node, source)
	methods := p.extractMethods(node, source, name)

	var constructorParams []string
	for _, method := range methods {
		if method.SimpleName() == "__init__" {
			constructorParams = method.Parameters()
			break
		}
	}

	return slicing.NewClassDefinition(
		"",
		node,
		node.StartByte(),
		node.EndByte(),
		name,
		name,
		!strings.HasPrefix(name, "_"),
		docstring,
		bases,
		methods,
		constructorParams,
	)
}

func (p *Python) extractBases(node *sitter.Node, source []byte) []string {
	superclasses := node.ChildByFieldName("superclasses")
	if superclasses == nil {
		return nil
	}

	var bases []string
	for i := uint32(0); i < superclasses.ChildCount(); i++ {
		child := superclasses.Child(int(i))
		if child != nil && p.Walker().IsIdentifier(child) {
			bases = append(bases, p.NodeText(child, source))
		}
	}

	return bases
}

func (p *Python) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	funcNodes := p.Walker().CollectNodes(body, []string{"function_definition"})
	methods := make([]slicing.FunctionDefinition, 0, len(funcNodes))

	for _, funcNode := range funcNodes {
		// Only direct members, not nested functions.
		if funcNode.Parent() != body {
			continue
		}

		name := p.FunctionName(funcNode, source)
		if name == "" {
			continue
		}

		method := slicing.NewFunctionDefinition(
			"",
			funcNode,
			funcNode.StartByte(),
			funcNode.EndByte(),
			className+"."+name,
			name,
			!strings.HasPrefix(name, "_") || name == "__init__",
			true,
			p.Docstring(funcNode, source),
			p.extractParameters(funcNode, source),
			p.extractReturnType(funcNode, source),
		)
		methods = append(methods, method)
	}

	return methods
}

func (p *Python) extractParameters(funcNode *sitter.Node, source []byte) []string {
	params := funcNode.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var result []string
	for i := uint32(0); i < params.ChildCount(); i++ {
		child := params.Child(int(i))
		if child == nil {
			continue
		}

		switch child.Type() {
		case "identifier", "typed_parameter", "default_parameter",
			"typed_default_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			result = append(result, p.NodeText(child, source))
		}
	}

	return result
}

func (p *Python) extractReturnType(funcNode *sitter.Node, source []byte) string {
	returnType := funcNode.ChildByFieldName("return_type")
	if returnType == nil {
		return ""
	}

	return p.NodeText(returnType, source)
}
