package language

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// JavaScript implements Analyzer for JavaScript, TypeScript, and TSX code.
// The three grammars share the node types that matter for slicing.
type JavaScript struct {
	Base
	ext string
}

// NewJavaScript creates a new JavaScript analyzer for the given language
// binding and primary file extension.
func NewJavaScript(language slicing.Language, ext string) *JavaScript {
	return &JavaScript{
		Base: NewBase(language),
		ext:  ext,
	}
}

// FunctionName extracts the function name, handling arrow functions
// assigned to variables.
func (js *JavaScript) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return js.NodeText(nameNode, source)
	}

	// Arrow functions and function expressions take their name from the
	// variable declarator or property they are assigned to.
	parent := node.Parent()
	for parent != nil {
		switch parent.Type() {
		case "variable_declarator", "pair", "public_field_definition":
			if n := parent.ChildByFieldName("name"); n != nil {
				return js.NodeText(n, source)
			}
			if n := parent.ChildByFieldName("key"); n != nil {
				return js.NodeText(n, source)
			}
			return ""
		case "assignment_expression":
			if n := parent.ChildByFieldName("left"); n != nil {
				name := js.NodeText(n, source)
				if idx := strings.LastIndex(name, "."); idx >= 0 {
					name = name[idx+1:]
				}
				return name
			}
			return ""
		case "statement_block", "program":
			return ""
		}
		parent = parent.Parent()
	}

	return ""
}

// IsPublic returns true unless the name follows the underscore-private
// convention.
func (js *JavaScript) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "#")
}

// IsMethod returns true for method_definition nodes.
func (js *JavaScript) IsMethod(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return node.Type() == "method_definition"
}

// Docstring extracts the JSDoc comment preceding a function.
func (js *JavaScript) Docstring(node *sitter.Node, source []byte) string {
	// Arrow functions carry their doc comment on the enclosing declaration.
	target := node
	parent := node.Parent()
	for parent != nil {
		switch parent.Type() {
		case "variable_declarator", "lexical_declaration", "variable_declaration", "export_statement":
			target = parent
			parent = parent.Parent()
			continue
		}
		break
	}

	return js.ExtractPrecedingComment(target, source)
}

// ModulePath builds the module path from file information.
func (js *JavaScript) ModulePath(file slicing.ParsedFile) string {
	return js.BuildModulePathFromPath(file.Path(), js.ext)
}

// Classes extracts class declarations.
func (js *JavaScript) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := js.Walker().CollectNodes(tree.RootNode(), []string{"class_declaration"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, js.extractClass(node, source))
	}

	return classes
}

// Types returns nil for JavaScript.
func (js *JavaScript) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}

func (js *JavaScript) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	name := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = js.NodeText(nameNode, source)
	}

	return slicing.NewClassDefinition(
		"",
		node,
		node.StartByte(),
		node.EndByte(),
		name,
		name,
		js.IsPublic(node, name, source),
		js.ExtractPrecedingComment(node, source),
		js.extractBases(node, source),
		js.extractMethods(node, source, name),
		nil,
	)
}

func (js *JavaScript) extractBases(node *sitter.Node, source []byte) []string {
	heritage := js.Walker().FindChildByType(node, "class_heritage")
	if heritage == nil {
		return nil
	}

	var bases []string
	js.Walker().Walk(heritage, func(n *sitter.Node) bool {
		if n.Type() == "identifier" {
			bases = append(bases, js.NodeText(n, source))
		}
		return true
	})

	return bases
}

func (js *JavaScript) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	methodNodes := js.Walker().CollectNodes(body, []string{"method_definition"})
	methods := make([]slicing.FunctionDefinition, 0, len(methodNodes))

	for _, methodNode := range methodNodes {
		nameNode := methodNode.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := js.NodeText(nameNode, source)
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
			js.IsPublic(methodNode, name, source),
			true,
			js.ExtractPrecedingComment(methodNode, source),
			js.extractParameters(methodNode, source),
			"",
		)
		methods = append(methods, method)
	}

	return methods
}

func (js *JavaScript) extractParameters(node *sitter.Node, source []byte) []string {
	params := node.ChildByFieldName("parameters")
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
		case "identifier", "required_parameter", "optional_parameter",
			"rest_pattern", "assignment_pattern", "object_pattern", "array_pattern":
			result = append(result, js.NodeText(child, source))
		}
	}

	return result
}
