package slicing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/snippet"
)

// elisionPlaceholder replaces the body of nested named functions inside an
// emitted snippet.
const elisionPlaceholder = "{ ... }"

// Slicer extracts code snippets from source files using AST parsing.
type Slicer struct {
	config          LanguageConfig
	analyzerFactory AnalyzerFactory
	walker          Walker
}

// AnalyzerFactory creates analyzers for different languages.
type AnalyzerFactory interface {
	ByExtension(ext string) (Analyzer, bool)
}

// NewSlicer creates a new Slicer.
func NewSlicer(config LanguageConfig, factory AnalyzerFactory) *Slicer {
	return &Slicer{
		config:          config,
		analyzerFactory: factory,
		walker:          NewWalker(),
	}
}

// SliceConfig configures snippet extraction behavior.
type SliceConfig struct {
	// MaxNameLength is the longest declaration name, in bytes, that still
	// produces a snippet. Longer names are treated as generated noise.
	MaxNameLength int
}

// DefaultSliceConfig returns default configuration.
func DefaultSliceConfig() SliceConfig {
	return SliceConfig{
		MaxNameLength: 255,
	}
}

// SliceResult contains the output of slicing a set of files.
type SliceResult struct {
	snippets  []snippet.Snippet
	functions []FunctionDefinition
	classes   []ClassDefinition
	types     []TypeDefinition
	callGraph *CallGraph
}

// NewSliceResult creates an empty SliceResult.
func NewSliceResult() SliceResult {
	return SliceResult{
		snippets:  make([]snippet.Snippet, 0),
		functions: make([]FunctionDefinition, 0),
		classes:   make([]ClassDefinition, 0),
		types:     make([]TypeDefinition, 0),
		callGraph: NewCallGraph(),
	}
}

// Snippets returns the extracted snippets.
func (r SliceResult) Snippets() []snippet.Snippet { return r.snippets }

// Functions returns the extracted function definitions.
func (r SliceResult) Functions() []FunctionDefinition { return r.functions }

// Classes returns the extracted class definitions.
func (r SliceResult) Classes() []ClassDefinition { return r.classes }

// Types returns the extracted type definitions.
func (r SliceResult) Types() []TypeDefinition { return r.types }

// CallGraph returns the function call graph.
func (r SliceResult) CallGraph() *CallGraph { return r.callGraph }

// State holds parsing state during slicing.
type State struct {
	files       []ParsedFile
	defIndex    map[string]FunctionDefinition
	typeIndex   map[string]TypeDefinition
	callGraph   *CallGraph
	importIndex map[string]map[string]string
	fileIndex   map[string]repository.File // Maps file path to the original File with ID
	sourceIndex map[string][]byte          // Maps file path to parsed source bytes
}

// Slice extracts snippets from the given files. One snippet is emitted per
// top-level function, method, and type declaration, public or not, plus one
// per script entry-point block. Unparseable files are skipped.
func (s *Slicer) Slice(ctx context.Context, files []repository.File, basePath string, cfg SliceConfig) (SliceResult, error) {
	result := NewSliceResult()
	state := &State{
		files:       make([]ParsedFile, 0, len(files)),
		defIndex:    make(map[string]FunctionDefinition),
		typeIndex:   make(map[string]TypeDefinition),
		callGraph:   NewCallGraph(),
		importIndex: make(map[string]map[string]string),
		fileIndex:   make(map[string]repository.File, len(files)),
		sourceIndex: make(map[string][]byte, len(files)),
	}

	// Build file index mapping path to original file object (with ID)
	for _, file := range files {
		state.fileIndex[file.Path()] = file
	}

	for _, file := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		parsed, err := s.parseFile(file, basePath)
		if err != nil {
			continue
		}

		if parsed.tree == nil {
			continue
		}

		state.files = append(state.files, parsed)
		state.sourceIndex[parsed.Path()] = parsed.SourceCode()
	}

	for _, parsed := range state.files {
		s.extractDefinitions(parsed, state)
	}

	for _, parsed := range state.files {
		s.buildCallGraph(parsed, state)
	}

	result.callGraph = state.callGraph

	for _, name := range sortedKeys(state.defIndex) {
		funcDef := state.defIndex[name]
		result.functions = append(result.functions, funcDef)

		if skippableName(funcDef.SimpleName(), cfg.MaxNameLength) {
			continue
		}

		snip := s.buildSnippet(funcDef, state)
		if snip.Content() != "" {
			result.snippets = append(result.snippets, snip)
		}
	}

	for _, name := range sortedKeys(state.typeIndex) {
		typeDef := state.typeIndex[name]
		result.types = append(result.types, typeDef)

		if skippableName(typeDef.SimpleName(), cfg.MaxNameLength) {
			continue
		}

		snip := s.buildTypeSnippet(typeDef, state)
		if snip.Content() != "" {
			result.snippets = append(result.snippets, snip)
		}
	}

	for _, parsed := range state.files {
		result.snippets = append(result.snippets, s.scriptEntrySnippets(parsed, state)...)
	}

	return result, nil
}

// skippableName reports whether a declaration name disqualifies it from
// producing a snippet: anonymous-like names and absurdly long (usually
// generated) names.
func skippableName(name string, maxLength int) bool {
	if name == "" || name == "anonymous" || name == "default" {
		return true
	}
	return len(name) > maxLength
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Slicer) parseFile(file repository.File, basePath string) (ParsedFile, error) {
	fullPath := filepath.Join(basePath, file.Path())
	ext := filepath.Ext(file.Path())

	lang, ok := s.config.ByExtension(ext)
	if !ok {
		return ParsedFile{}, nil
	}

	source, err := os.ReadFile(fullPath)
	if err != nil {
		return ParsedFile{}, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang.SitterLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return ParsedFile{}, err
	}

	return NewParsedFile(file.Path(), tree, source), nil
}

func (s *Slicer) extractDefinitions(parsed ParsedFile, state *State) {
	ext := filepath.Ext(parsed.Path())
	analyzer, ok := s.analyzerFactory.ByExtension(ext)
	if !ok {
		return
	}

	modulePath := analyzer.ModulePath(parsed)
	source := parsed.SourceCode()
	tree := parsed.Tree()
	nodes := tree.RootNode()

	langNodes := analyzer.Language().Nodes()
	funcTypes := append(langNodes.FunctionNodes(), langNodes.MethodNodes()...)
	funcNodes := s.walker.CollectNodes(nodes, funcTypes)

	for _, node := range funcNodes {
		if !isTopLevelFunction(node, langNodes) {
			continue
		}

		name := analyzer.FunctionName(node, source)
		if name == "" {
			continue
		}

		qualifiedName := buildQualified(modulePath, name)

		if analyzer.IsMethod(node) {
			receiverName := s.extractReceiverName(node, source)
			if receiverName != "" {
				qualifiedName = buildQualified(modulePath, receiverName+"."+name)
			}
		}

		funcDef := NewFunctionDefinition(
			parsed.Path(),
			node,
			node.StartByte(),
			node.EndByte(),
			qualifiedName,
			name,
			analyzer.IsPublic(node, name, source),
			analyzer.IsMethod(node),
			analyzer.Docstring(node, source),
			nil,
			"",
		)

		state.defIndex[qualifiedName] = funcDef
	}

	classes := analyzer.Classes(tree, source)
	for _, class := range classes {
		for _, method := range class.Methods() {
			state.defIndex[method.QualifiedName()] = method
		}
	}

	types := analyzer.Types(tree, source)
	for _, typeDef := range types {
		name := typeDef.SimpleName()
		if name == "" {
			continue
		}
		qualified := buildQualified(modulePath, name)
		filled := NewTypeDefinition(
			parsed.Path(),
			typeDef.Node(),
			typeDef.StartByte(),
			typeDef.EndByte(),
			qualified,
			name,
			typeDef.Kind(),
			typeDef.Docstring(),
			typeDef.ConstructorParams(),
		)
		state.typeIndex[qualified] = filled
	}
}

// isTopLevelFunction reports whether a function node is a top-level
// declaration (or a method) rather than a function nested inside another
// function. Nested named functions are elided from their parent's snippet
// instead of producing their own.
func isTopLevelFunction(node *sitter.Node, langNodes NodeTypes) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		t := parent.Type()
		if langNodes.IsFunctionNode(t) || langNodes.IsMethodNode(t) {
			return false
		}
	}
	return true
}

func (s *Slicer) extractReceiverName(node *sitter.Node, source []byte) string {
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}

	var typeName string
	s.walker.Walk(receiver, func(n *sitter.Node) bool {
		if n.Type() == "type_identifier" {
			typeName = s.walker.NodeText(n, source)
			return false
		}
		return true
	})

	return typeName
}

func (s *Slicer) buildCallGraph(parsed ParsedFile, state *State) {
	ext := filepath.Ext(parsed.Path())
	analyzer, ok := s.analyzerFactory.ByExtension(ext)
	if !ok {
		return
	}

	modulePath := analyzer.ModulePath(parsed)
	source := parsed.SourceCode()
	tree := parsed.Tree()
	nodes := tree.RootNode()

	langNodes := analyzer.Language().Nodes()
	funcTypes := append(langNodes.FunctionNodes(), langNodes.MethodNodes()...)
	funcNodes := s.walker.CollectNodes(nodes, funcTypes)

	for _, funcNode := range funcNodes {
		funcName := analyzer.FunctionName(funcNode, source)
		if funcName == "" {
			continue
		}

		callerQualified := buildQualified(modulePath, funcName)

		if analyzer.IsMethod(funcNode) {
			receiverName := s.extractReceiverName(funcNode, source)
			if receiverName != "" {
				callerQualified = buildQualified(modulePath, receiverName+"."+funcName)
			}
		}

		callNodeType := langNodes.CallNode()
		callNodes := s.walker.CollectDescendants(funcNode, callNodeType)

		for _, callNode := range callNodes {
			calleeName := s.extractCalleeName(callNode, source)
			if calleeName == "" {
				continue
			}

			calleeQualified := s.resolveCallee(calleeName, modulePath, state)
			state.callGraph.AddCall(callerQualified, calleeQualified)
		}
	}
}

func (s *Slicer) extractCalleeName(node *sitter.Node, source []byte) string {
	funcNode := node.ChildByFieldName("function")
	if funcNode != nil {
		return s.walker.NodeText(funcNode, source)
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return s.walker.NodeText(nameNode, source)
	}

	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child != nil && s.walker.IsIdentifier(child) {
			return s.walker.NodeText(child, source)
		}
	}

	return ""
}

func (s *Slicer) resolveCallee(name, modulePath string, state *State) string {
	if strings.Contains(name, ".") {
		parts := strings.Split(name, ".")
		name = parts[len(parts)-1]
	}

	qualified := buildQualified(modulePath, name)
	if _, ok := state.defIndex[qualified]; ok {
		return qualified
	}

	for qname := range state.defIndex {
		if strings.HasSuffix(qname, "."+name) {
			return qname
		}
	}

	return name
}

// buildSnippet renders a function or method as a snippet: the top-level
// type declarations referenced in its signature, each followed by a blank
// line, then the declaration itself with nested named functions elided.
func (s *Slicer) buildSnippet(funcDef FunctionDefinition, state *State) snippet.Snippet {
	source, ok := state.sourceIndex[funcDef.FilePath()]

	var contentParts []string

	if ok {
		for _, typeDef := range s.signatureTypes(funcDef, state) {
			typeSource, found := state.sourceIndex[typeDef.FilePath()]
			if !found {
				continue
			}
			text := sliceSpan(typeSource, typeDef.StartByte(), typeDef.EndByte())
			if text != "" {
				contentParts = append(contentParts, text)
			}
		}

		start, end := funcDef.Span()
		decl := s.elideNestedFunctions(funcDef, source, start, end)
		if decl != "" {
			contentParts = append(contentParts, decl)
		}
	}

	content := strings.Join(contentParts, "\n\n")
	ext := filepath.Ext(funcDef.FilePath())

	return snippet.NewSnippet(content, extToLanguage(ext), s.derivesFrom(funcDef.FilePath(), state))
}

// signatureTypes resolves type names referenced in a declaration's
// signature (parameters, results, receiver) to top-level type definitions
// from the sliced file set, in order of appearance.
func (s *Slicer) signatureTypes(funcDef FunctionDefinition, state *State) []TypeDefinition {
	node := funcDef.Node()
	if node == nil {
		return nil
	}
	source, ok := state.sourceIndex[funcDef.FilePath()]
	if !ok {
		return nil
	}

	body := node.ChildByFieldName("body")

	var names []string
	seen := make(map[string]struct{})
	s.walker.Walk(node, func(n *sitter.Node) bool {
		if body != nil && n.StartByte() >= body.StartByte() && n.EndByte() <= body.EndByte() {
			return true
		}
		if n.Type() != "type_identifier" {
			return true
		}
		name := s.walker.NodeText(n, source)
		if name == "" {
			return true
		}
		if _, dup := seen[name]; dup {
			return true
		}
		seen[name] = struct{}{}
		names = append(names, name)
		return true
	})

	var resolved []TypeDefinition
	for _, name := range names {
		if typeDef, found := s.resolveType(name, funcDef.QualifiedName(), state); found {
			resolved = append(resolved, typeDef)
		}
	}
	return resolved
}

func (s *Slicer) resolveType(name, callerQualified string, state *State) (TypeDefinition, bool) {
	// Same module first.
	if idx := strings.LastIndex(callerQualified, "."); idx > 0 {
		qualified := callerQualified[:idx] + "." + name
		if typeDef, ok := state.typeIndex[qualified]; ok {
			return typeDef, true
		}
	}
	if typeDef, ok := state.typeIndex[name]; ok {
		return typeDef, true
	}
	for _, qname := range sortedKeys(state.typeIndex) {
		if strings.HasSuffix(qname, "."+name) {
			return state.typeIndex[qname], true
		}
	}
	return TypeDefinition{}, false
}

// elideNestedFunctions renders the declaration's source span with the body
// of every named function nested inside it collapsed to the placeholder.
func (s *Slicer) elideNestedFunctions(funcDef FunctionDefinition, source []byte, start, end uint32) string {
	if start >= uint32(len(source)) || end > uint32(len(source)) || start >= end {
		return ""
	}

	node := funcDef.Node()
	ext := filepath.Ext(funcDef.FilePath())
	analyzer, ok := s.analyzerFactory.ByExtension(ext)
	if node == nil || !ok {
		return string(source[start:end])
	}

	langNodes := analyzer.Language().Nodes()
	funcTypes := append(langNodes.FunctionNodes(), langNodes.MethodNodes()...)

	type span struct{ start, end uint32 }
	var cuts []span
	for _, nested := range s.walker.CollectNodes(node, funcTypes) {
		if nested.ID() == node.ID() {
			continue
		}
		if analyzer.FunctionName(nested, source) == "" {
			continue
		}
		body := nested.ChildByFieldName("body")
		if body == nil {
			continue
		}
		cuts = append(cuts, span{body.StartByte(), body.EndByte()})
	}

	if len(cuts) == 0 {
		return string(source[start:end])
	}

	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var b strings.Builder
	pos := start
	for _, c := range cuts {
		// Skip spans outside the declaration or inside an already elided one.
		if c.start < pos || c.end > end {
			continue
		}
		b.Write(source[pos:c.start])
		b.WriteString(elisionPlaceholder)
		pos = c.end
	}
	b.Write(source[pos:end])
	return b.String()
}

func (s *Slicer) buildTypeSnippet(typeDef TypeDefinition, state *State) snippet.Snippet {
	var content string
	if source, ok := state.sourceIndex[typeDef.FilePath()]; ok {
		content = sliceSpan(source, typeDef.StartByte(), typeDef.EndByte())
	}

	ext := filepath.Ext(typeDef.FilePath())
	return snippet.NewSnippet(content, extToLanguage(ext), s.derivesFrom(typeDef.FilePath(), state))
}

// scriptEntrySnippets emits snippets for script entry-point blocks, such as
// Python's `if __name__ == "__main__":` guard. Languages whose entry point
// is a named function are already covered by the function snippets.
func (s *Slicer) scriptEntrySnippets(parsed ParsedFile, state *State) []snippet.Snippet {
	ext := filepath.Ext(parsed.Path())
	lang, ok := s.config.ByExtension(ext)
	if !ok || lang.Name() != "python" {
		return nil
	}

	source := parsed.SourceCode()
	root := parsed.Tree().RootNode()

	var snippets []snippet.Snippet
	for i := uint32(0); i < root.ChildCount(); i++ {
		child := root.Child(int(i))
		if child == nil || child.Type() != "if_statement" {
			continue
		}
		condition := child.ChildByFieldName("condition")
		condText := s.walker.NodeText(condition, source)
		if !strings.Contains(condText, "__name__") || !strings.Contains(condText, "__main__") {
			continue
		}
		content := sliceSpan(source, child.StartByte(), child.EndByte())
		if content == "" {
			continue
		}
		snippets = append(snippets, snippet.NewSnippet(content, lang.Name(), s.derivesFrom(parsed.Path(), state)))
	}
	return snippets
}

func (s *Slicer) derivesFrom(path string, state *State) []repository.File {
	if file, found := state.fileIndex[path]; found {
		return []repository.File{file}
	}
	ext := filepath.Ext(path)
	return []repository.File{
		repository.NewFile("", path, extToLanguage(ext), 0),
	}
}

func sliceSpan(source []byte, start, end uint32) string {
	if start >= uint32(len(source)) || end > uint32(len(source)) || start >= end {
		return ""
	}
	return string(source[start:end])
}

func buildQualified(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}

func extToLanguage(ext string) string {
	languages := map[string]string{
		".py":   "python",
		".go":   "go",
		".java": "java",
		".c":    "c",
		".cpp":  "cpp",
		".cc":   "cpp",
		".cxx":  "cpp",
		".rs":   "rust",
		".js":   "javascript",
		".ts":   "typescript",
		".tsx":  "tsx",
		".cs":   "csharp",
	}

	if lang, ok := languages[ext]; ok {
		return lang
	}
	return ""
}
