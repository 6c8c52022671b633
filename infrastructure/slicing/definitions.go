package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ParsedFile holds a parsed source file and its AST.
type ParsedFile struct {
	path   string
	tree   *sitter.Tree
	source []byte
}

// NewParsedFile creates a new ParsedFile.
func NewParsedFile(path string, tree *sitter.Tree, source []byte) ParsedFile {
	return ParsedFile{
		path:   path,
		tree:   tree,
		source: source,
	}
}

// Path returns the file path relative to the repository root.
func (f ParsedFile) Path() string { return f.path }

// Tree returns the parsed syntax tree.
func (f ParsedFile) Tree() *sitter.Tree { return f.tree }

// SourceCode returns the raw source bytes.
func (f ParsedFile) SourceCode() []byte { return f.source }

// FunctionDefinition describes a function or method found in source code.
type FunctionDefinition struct {
	filePath      string
	node          *sitter.Node
	startByte     uint32
	endByte       uint32
	qualifiedName string
	simpleName    string
	isPublic      bool
	isMethod      bool
	docstring     string
	parameters    []string
	returnType    string
}

// NewFunctionDefinition creates a new FunctionDefinition.
func NewFunctionDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName string,
	isPublic, isMethod bool,
	docstring string,
	parameters []string,
	returnType string,
) FunctionDefinition {
	return FunctionDefinition{
		filePath:      filePath,
		node:          node,
		startByte:     startByte,
		endByte:       endByte,
		qualifiedName: qualifiedName,
		simpleName:    simpleName,
		isPublic:      isPublic,
		isMethod:      isMethod,
		docstring:     docstring,
		parameters:    parameters,
		returnType:    returnType,
	}
}

// FilePath returns the path of the file containing the definition.
func (d FunctionDefinition) FilePath() string { return d.filePath }

// Node returns the AST node of the definition.
func (d FunctionDefinition) Node() *sitter.Node { return d.node }

// Span returns the byte range of the definition in its source file.
func (d FunctionDefinition) Span() (uint32, uint32) { return d.startByte, d.endByte }

// QualifiedName returns the module-qualified name.
func (d FunctionDefinition) QualifiedName() string { return d.qualifiedName }

// SimpleName returns the unqualified name.
func (d FunctionDefinition) SimpleName() string { return d.simpleName }

// IsPublic reports whether the definition is part of the public API.
func (d FunctionDefinition) IsPublic() bool { return d.isPublic }

// IsMethod reports whether the definition is a method.
func (d FunctionDefinition) IsMethod() bool { return d.isMethod }

// Docstring returns the documentation comment, if any.
func (d FunctionDefinition) Docstring() string { return d.docstring }

// Parameters returns the parameter list as source text.
func (d FunctionDefinition) Parameters() []string { return d.parameters }

// ReturnType returns the return type as source text.
func (d FunctionDefinition) ReturnType() string { return d.returnType }

// ClassDefinition describes a class-like definition (class, struct,
// interface, enum) and its methods.
type ClassDefinition struct {
	filePath          string
	node              *sitter.Node
	startByte         uint32
	endByte           uint32
	qualifiedName     string
	simpleName        string
	isPublic          bool
	docstring         string
	bases             []string
	methods           []FunctionDefinition
	constructorParams []string
}

// NewClassDefinition creates a new ClassDefinition.
func NewClassDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName string,
	isPublic bool,
	docstring string,
	bases []string,
	methods []FunctionDefinition,
	constructorParams []string,
) ClassDefinition {
	return ClassDefinition{
		filePath:          filePath,
		node:              node,
		startByte:         startByte,
		endByte:           endByte,
		qualifiedName:     qualifiedName,
		simpleName:        simpleName,
		isPublic:          isPublic,
		docstring:         docstring,
		bases:             bases,
		methods:           methods,
		constructorParams: constructorParams,
	}
}

// FilePath returns the path of the file containing the class.
func (d ClassDefinition) FilePath() string { return d.filePath }

// Node returns the AST node of the class.
func (d ClassDefinition) Node() *sitter.Node { return d.node }

// StartByte returns the start of the class in its source file.
func (d ClassDefinition) StartByte() uint32 { return d.startByte }

// EndByte returns the end of the class in its source file.
func (d ClassDefinition) EndByte() uint32 { return d.endByte }

// QualifiedName returns the module-qualified name.
func (d ClassDefinition) QualifiedName() string { return d.qualifiedName }

// SimpleName returns the unqualified name.
func (d ClassDefinition) SimpleName() string { return d.simpleName }

// IsPublic reports whether the class is part of the public API.
func (d ClassDefinition) IsPublic() bool { return d.isPublic }

// Docstring returns the documentation comment, if any.
func (d ClassDefinition) Docstring() string { return d.docstring }

// Bases returns the base classes or interfaces.
func (d ClassDefinition) Bases() []string { return d.bases }

// Methods returns the methods defined on the class.
func (d ClassDefinition) Methods() []FunctionDefinition { return d.methods }

// ConstructorParams returns the constructor parameter list.
func (d ClassDefinition) ConstructorParams() []string { return d.constructorParams }

// TypeDefinition describes a named type (alias, typedef, trait).
type TypeDefinition struct {
	filePath          string
	node              *sitter.Node
	startByte         uint32
	endByte           uint32
	qualifiedName     string
	simpleName        string
	kind              string
	docstring         string
	constructorParams []string
}

// NewTypeDefinition creates a new TypeDefinition.
func NewTypeDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName string,
	kind string,
	docstring string,
	constructorParams []string,
) TypeDefinition {
	return TypeDefinition{
		filePath:          filePath,
		node:              node,
		startByte:         startByte,
		endByte:           endByte,
		qualifiedName:     qualifiedName,
		simpleName:        simpleName,
		kind:              kind,
		docstring:         docstring,
		constructorParams: constructorParams,
	}
}

// FilePath returns the path of the file containing the type.
func (d TypeDefinition) FilePath() string { return d.filePath }

// Node returns the AST node of the type.
func (d TypeDefinition) Node() *sitter.Node { return d.node }

// StartByte returns the start of the type in its source file.
func (d TypeDefinition) StartByte() uint32 { return d.startByte }

// EndByte returns the end of the type in its source file.
func (d TypeDefinition) EndByte() uint32 { return d.endByte }

// QualifiedName returns the module-qualified name.
func (d TypeDefinition) QualifiedName() string { return d.qualifiedName }

// SimpleName returns the unqualified name.
func (d TypeDefinition) SimpleName() string { return d.simpleName }

// Kind returns what kind of type this is (struct, alias, trait, typedef).
func (d TypeDefinition) Kind() string { return d.kind }

// Docstring returns the documentation comment, if any.
func (d TypeDefinition) Docstring() string { return d.docstring }

// ConstructorParams returns the constructor parameter list.
func (d TypeDefinition) ConstructorParams() []string { return d.constructorParams }
