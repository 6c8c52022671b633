package language

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// Java implements Analyzer for Java code.
type Java struct {
	Base
}

// NewJava creates a new Java analyzer.
func NewJava(language slicing.Language) *Java {
	return &Java{
		Base: NewBase(language),
	}
}

// FunctionName extracts the method name from a method_declaration node.
func (j *Java) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return j.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic returns true if the declaration carries a public modifier.
func (j *Java) IsPublic(node *sitter.Node, _ string, source []byte) bool {
	if node == nil {
		return false
	}

	modifiers := j.Walker().FindChildByType(node, "modifiers")
	if modifiers == nil {
		return false
	}

	for i := uint32(0); i < modifiers.ChildCount(); i++ {
		child := modifiers.Child(int(i))
		if child != nil && j.NodeText(child, source) == "public" {
			return true
		}
	}

	return false
}

// IsMethod returns true for all Java declarations (everything lives in a class).
func (j *Java) IsMethod(node *sitter.Node) bool {
	return node != nil
}

// Docstring extracts the Javadoc comment preceding a declaration.
func (j *Java) Docstring(node *sitter.Node, source []byte) string {
	return j.ExtractPrecedingComment(node, source)
}

// ModulePath builds the module path from the package declaration.
func (j *Java) ModulePath(file slicing.ParsedFile) string {
	tree := file.Tree()
	if tree != nil {
		pkgNode := j.Walker().FindDescendant(tree.RootNode(), "package_declaration")
		if pkgNode != nil {
			ident := j.Walker().FindDescendant(pkgNode, "scoped_identifier")
			if ident == nil {
				ident = j.Walker().FindDescendant(pkgNode, "identifier")
			}
			if ident != nil {
				pkg := j.NodeText(ident, file.SourceCode())
				if pkg != "" {
					return pkg
				}
			}
		}
	}

	return j.BuildModulePathFromPath(file.Path(), ".java")
}

// Classes extracts class, interface, and enum definitions.
func (j *Java) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := j.Walker().CollectNodes(tree.RootNode(), []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, j.extractClass(node, source))
	}

	return classes
}

// Types returns nil for Java (types are classes).
func (j *Java) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}

func (j *Java) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = j.NodeText(nameNode, source)
	}

	return slicing.NewClassDefinition(
		"",
		node,
		node.StartByte(),
		node.EndByte(),
		name,
		name,
		j.IsPublic(node, name, source),
		j.Docstring(node, source),
		j.extractBases(node, source),
		j.extractMethods(node, source, name),
		nil,
	)
}

func (j *Java) extractBases(node *sitter.Node, source []byte) []string {
	var bases []string

	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		j.Walker().Walk(superclass, func(n *sitter.Node) bool {
			if n.Type() == "type_identifier" {
				bases = append(bases, j.NodeText(n, source))
			}
			return true
		})
	}

	if interfaces := node.ChildByFieldName("interfaces"); interfaces != nil {
		j.Walker().Walk(interfaces, func(n *sitter.Node) bool {
			if n.Type() == "type_identifier" {
				bases = append(bases, j.NodeText(n, source))
			}
			return true
		})
	}

	return bases
}

func (j *Java) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	methodNodes := j.Walker().CollectNodes(body, []string{"method_declaration", "constructor_declaration"})
	methods := make([]slicing.FunctionDefinition, 0, len(methodNodes))

	for _, methodNode := range methodNodes {
		name := j.FunctionName(methodNode, source)
		if name == "" {
			continue
		}

		method := slicing.NewFunctionDefinition(
			"",
			methodNode,
			methodNode.StartByte(),
			methodNode.EndByte(),
			className+"."+name,
			name,
			j.IsPublic(methodNode, name, source),
			true,
			j.Docstring(methodNode, source),
			j.extractParameters(methodNode, source),
			j.extractReturnType(methodNode, source),
		)
		methods = append(methods, method)
	}

	return methods
}

func (j *Java) extractParameters(node *sitter.Node, source []byte) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var result []string
	paramNodes := j.Walker().CollectNodes(params, []string{"formal_parameter", "spread_parameter"})
	for _, paramNode := range paramNodes {
		result = append(result, j.NodeText(paramNode, source))
	}

	return result
}

func (j *Java) extractReturnType(node *sitter.Node, source []byte) string {
	returnType := node.ChildByFieldName("type")
	if returnType == nil {
		return ""
	}

	return j.NodeText(returnType, source)
}
