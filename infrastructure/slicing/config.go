package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// NodeTypes names the AST node types that matter for slicing a language:
// which nodes are functions, which are methods, and what a call looks like.
type NodeTypes struct {
	functionNodes []string
	methodNodes   []string
	callNode      string
}

// NewNodeTypes creates a new NodeTypes.
func NewNodeTypes(functionNodes, methodNodes []string, callNode string) NodeTypes {
	return NodeTypes{
		functionNodes: functionNodes,
		methodNodes:   methodNodes,
		callNode:      callNode,
	}
}

// FunctionNodes returns the node types for free functions.
func (n NodeTypes) FunctionNodes() []string { return n.functionNodes }

// MethodNodes returns the node types for methods.
func (n NodeTypes) MethodNodes() []string { return n.methodNodes }

// CallNode returns the node type for call expressions.
func (n NodeTypes) CallNode() string { return n.callNode }

// IsFunctionNode reports whether nodeType is a function node.
func (n NodeTypes) IsFunctionNode(nodeType string) bool {
	for _, t := range n.functionNodes {
		if t == nodeType {
			return true
		}
	}
	return false
}

// IsMethodNode reports whether nodeType is a method node.
func (n NodeTypes) IsMethodNode(nodeType string) bool {
	for _, t := range n.methodNodes {
		if t == nodeType {
			return true
		}
	}
	return false
}

// Language binds a language name to its tree-sitter grammar, file
// extensions, and the node types used during slicing.
type Language struct {
	name       string
	extensions []string
	sitterLang *sitter.Language
	nodes      NodeTypes
}

// NewLanguage creates a new Language.
func NewLanguage(name string, extensions []string, sitterLang *sitter.Language, nodes NodeTypes) Language {
	return Language{
		name:       name,
		extensions: extensions,
		sitterLang: sitterLang,
		nodes:      nodes,
	}
}

// Name returns the language name.
func (l Language) Name() string { return l.name }

// Extensions returns the file extensions for the language.
func (l Language) Extensions() []string { return l.extensions }

// SitterLanguage returns the tree-sitter grammar.
func (l Language) SitterLanguage() *sitter.Language { return l.sitterLang }

// Nodes returns the slicing-relevant node types.
func (l Language) Nodes() NodeTypes { return l.nodes }

// Analyzer extracts language-specific structure from parsed files.
type Analyzer interface {
	// Language returns the language this analyzer handles.
	Language() Language

	// FunctionName extracts the name of a function or method node.
	FunctionName(node *sitter.Node, source []byte) string

	// IsPublic reports whether the named definition is public API.
	IsPublic(node *sitter.Node, name string, source []byte) bool

	// IsMethod reports whether the node is a method rather than a free function.
	IsMethod(node *sitter.Node) bool

	// Docstring extracts the documentation comment for a node.
	Docstring(node *sitter.Node, source []byte) string

	// ModulePath derives the module path for a parsed file.
	ModulePath(file ParsedFile) string

	// Classes extracts class-like definitions from the tree.
	Classes(tree *sitter.Tree, source []byte) []ClassDefinition

	// Types extracts named type definitions from the tree.
	Types(tree *sitter.Tree, source []byte) []TypeDefinition
}

// LanguageConfig maps file extensions and names to supported languages.
type LanguageConfig struct {
	byExtension map[string]Language
	byName      map[string]Language
}

// NewLanguageConfig creates a LanguageConfig with all supported languages.
func NewLanguageConfig() LanguageConfig {
	languages := []Language{
		NewLanguage("python", []string{".py"}, python.GetLanguage(),
			NewNodeTypes([]string{"function_definition"}, nil, "call")),
		NewLanguage("go", []string{".go"}, golang.GetLanguage(),
			NewNodeTypes([]string{"function_declaration"}, []string{"method_declaration"}, "call_expression")),
		NewLanguage("java", []string{".java"}, java.GetLanguage(),
			NewNodeTypes(nil, []string{"method_declaration", "constructor_declaration"}, "method_invocation")),
		NewLanguage("c", []string{".c", ".h"}, c.GetLanguage(),
			NewNodeTypes([]string{"function_definition"}, nil, "call_expression")),
		NewLanguage("cpp", []string{".cpp", ".cc", ".cxx", ".hpp"}, cpp.GetLanguage(),
			NewNodeTypes([]string{"function_definition"}, nil, "call_expression")),
		NewLanguage("rust", []string{".rs"}, rust.GetLanguage(),
			NewNodeTypes([]string{"function_item"}, nil, "call_expression")),
		NewLanguage("javascript", []string{".js", ".jsx", ".mjs"}, javascript.GetLanguage(),
			NewNodeTypes(
				[]string{"function_declaration", "generator_function_declaration", "function_expression", "arrow_function"},
				[]string{"method_definition"},
				"call_expression")),
		NewLanguage("typescript", []string{".ts"}, typescript.GetLanguage(),
			NewNodeTypes(
				[]string{"function_declaration", "generator_function_declaration", "function_expression", "arrow_function"},
				[]string{"method_definition"},
				"call_expression")),
		NewLanguage("tsx", []string{".tsx"}, tsx.GetLanguage(),
			NewNodeTypes(
				[]string{"function_declaration", "generator_function_declaration", "function_expression", "arrow_function"},
				[]string{"method_definition"},
				"call_expression")),
		NewLanguage("csharp", []string{".cs"}, csharp.GetLanguage(),
			NewNodeTypes(
				[]string{"local_function_statement"},
				[]string{"method_declaration", "constructor_declaration"},
				"invocation_expression")),
	}

	config := LanguageConfig{
		byExtension: make(map[string]Language),
		byName:      make(map[string]Language, len(languages)),
	}
	for _, lang := range languages {
		config.byName[lang.Name()] = lang
		for _, ext := range lang.Extensions() {
			config.byExtension[ext] = lang
		}
	}
	return config
}

// ByExtension returns the language for a file extension.
func (lc LanguageConfig) ByExtension(ext string) (Language, bool) {
	lang, ok := lc.byExtension[ext]
	return lang, ok
}

// ByName returns the language by name.
func (lc LanguageConfig) ByName(name string) (Language, bool) {
	lang, ok := lc.byName[name]
	return lang, ok
}

// Names returns the names of all supported languages.
func (lc LanguageConfig) Names() []string {
	names := make([]string, 0, len(lc.byName))
	for name := range lc.byName {
		names = append(names, name)
	}
	return names
}
