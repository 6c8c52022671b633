package slicing_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/infrastructure/slicing"
	"github.com/kodit-ai/kodit/infrastructure/slicing/language"
)

func newParser(lang slicing.Language) *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.SitterLanguage())
	return parser
}

func TestLanguageConfig_ByExtension(t *testing.T) {
	config := slicing.NewLanguageConfig()

	tests := []struct {
		ext      string
		expected string
		ok       bool
	}{
		{".py", "python", true},
		{".go", "go", true},
		{".java", "java", true},
		{".c", "c", true},
		{".cpp", "cpp", true},
		{".rs", "rust", true},
		{".js", "javascript", true},
		{".ts", "typescript", true},
		{".tsx", "tsx", true},
		{".cs", "csharp", true},
		{".unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			lang, ok := config.ByExtension(tt.ext)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, lang.Name())
			}
		})
	}
}

func TestNodeTypes_IsFunctionNode(t *testing.T) {
	config := slicing.NewLanguageConfig()

	pythonLang, ok := config.ByName("python")
	require.True(t, ok)

	nodes := pythonLang.Nodes()
	assert.True(t, nodes.IsFunctionNode("function_definition"))
	assert.False(t, nodes.IsFunctionNode("class_definition"))

	goLang, ok := config.ByName("go")
	require.True(t, ok)

	goNodes := goLang.Nodes()
	assert.True(t, goNodes.IsFunctionNode("function_declaration"))
	assert.True(t, goNodes.IsMethodNode("method_declaration"))
}

func TestWalker_Walk(t *testing.T) {
	config := slicing.NewLanguageConfig()
	lang, _ := config.ByExtension(".py")

	source := []byte(`def foo():
    pass

def bar():
    foo()
`)

	walker := slicing.NewWalker()

	sitterParser := newParser(lang)
	tree, err := sitterParser.ParseCtx(context.Background(), nil, source)
	require.NoError(t, err)

	var nodeTypes []string
	walker.Walk(tree.RootNode(), func(node *sitter.Node) bool {
		nodeTypes = append(nodeTypes, node.Type())
		return true
	})

	assert.Contains(t, nodeTypes, "module")
	assert.Contains(t, nodeTypes, "function_definition")
}

func TestWalker_CollectNodes(t *testing.T) {
	config := slicing.NewLanguageConfig()
	lang, _ := config.ByExtension(".py")

	source := []byte(`def foo():
    pass

def bar():
    pass

class MyClass:
    def method(self):
        pass
`)

	sitterParser := newParser(lang)
	tree, err := sitterParser.ParseCtx(context.Background(), nil, source)
	require.NoError(t, err)

	walker := slicing.NewWalker()
	funcNodes := walker.CollectNodes(tree.RootNode(), []string{"function_definition"})

	assert.Len(t, funcNodes, 3)
}

func TestCallGraph(t *testing.T) {
	graph := slicing.NewCallGraph()

	graph.AddCall("main", "foo")
	graph.AddCall("main", "bar")
	graph.AddCall("foo", "helper")
	graph.AddCall("bar", "helper")

	callees := graph.Callees("main")
	assert.Len(t, callees, 2)

	callers := graph.Callers("helper")
	assert.Len(t, callers, 2)

	deps := graph.Dependencies("main", 2, 10)
	assert.Contains(t, deps, "foo")
	assert.Contains(t, deps, "bar")
	assert.Contains(t, deps, "helper")
}

func TestSlicer_SlicePythonFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.py")

	pythonCode := `def greet(name):
    """Greet someone."""
    return f"Hello, {name}!"

def main():
    message = greet("World")
    print(message)
`
	err := os.WriteFile(testFile, []byte(pythonCode), 0644)
	require.NoError(t, err)

	config := slicing.NewLanguageConfig()
	factory := language.NewFactory(config)
	s := slicing.NewSlicer(config, factory)

	files := []repository.File{
		repository.NewFile("abc123", "test.py", "python", int64(len(pythonCode))),
	}

	cfg := slicing.DefaultSliceConfig()
	result, err := s.Slice(context.Background(), files, tmpDir, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Functions())
	assert.NotEmpty(t, result.Snippets())

	var functionNames []string
	for _, f := range result.Functions() {
		functionNames = append(functionNames, f.SimpleName())
	}

	assert.Contains(t, functionNames, "greet")
	assert.Contains(t, functionNames, "main")
}

func TestSlicer_SliceGoFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.go")

	goCode := `package main

// Greet returns a greeting message.
func Greet(name string) string {
	return "Hello, " + name + "!"
}

func main() {
	message := Greet("World")
	println(message)
}
`
	err := os.WriteFile(testFile, []byte(goCode), 0644)
	require.NoError(t, err)

	config := slicing.NewLanguageConfig()
	factory := language.NewFactory(config)
	s := slicing.NewSlicer(config, factory)

	files := []repository.File{
		repository.NewFile("abc123", "test.go", "go", int64(len(goCode))),
	}

	cfg := slicing.DefaultSliceConfig()
	result, err := s.Slice(context.Background(), files, tmpDir, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Functions())

	var functionNames []string
	for _, f := range result.Functions() {
		functionNames = append(functionNames, f.SimpleName())
	}

	assert.Contains(t, functionNames, "Greet")
	assert.Contains(t, functionNames, "main")
}

func TestSlicer_SliceJavaScriptFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.js")

	jsCode := `function greet(name) {
    return "Hello, " + name + "!";
}

const sayHello = () => {
    console.log(greet("World"));
};
`
	err := os.WriteFile(testFile, []byte(jsCode), 0644)
	require.NoError(t, err)

	config := slicing.NewLanguageConfig()
	factory := language.NewFactory(config)
	s := slicing.NewSlicer(config, factory)

	files := []repository.File{
		repository.NewFile("abc123", "test.js", "javascript", int64(len(jsCode))),
	}

	cfg := slicing.DefaultSliceConfig()
	result, err := s.Slice(context.Background(), files, tmpDir, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Functions())
}

func TestAnalyzers_PythonDocstring(t *testing.T) {
	config := slicing.NewLanguageConfig()
	lang, _ := config.ByExtension(".py")
	analyzer := language.NewPython(lang)

	source := []byte(`def foo():
    """This is a docstring."""
    pass
`)

	sitterParser := newParser(lang)
	tree, err := sitterParser.ParseCtx(context.Background(), nil, source)
	require.NoError(t, err)

	walker := slicing.NewWalker()
	funcNodes := walker.CollectNodes(tree.RootNode(), []string{"function_definition"})
	require.Len(t, funcNodes, 1)

	docstring := analyzer.Docstring(funcNodes[0], source)
	assert.Equal(t, "This is a docstring.", docstring)
}

func TestAnalyzers_GoPublicFunction(t *testing.T) {
	config := slicing.NewLanguageConfig()
	lang, _ := config.ByExtension(".go")
	analyzer := language.NewGo(lang)

	assert.True(t, analyzer.IsPublic(nil, "PublicFunc", nil))
	assert.False(t, analyzer.IsPublic(nil, "privateFunc", nil))
}

func TestAnalyzers_PythonPublicFunction(t *testing.T) {
	config := slicing.NewLanguageConfig()
	lang, _ := config.ByExtension(".py")
	analyzer := language.NewPython(lang)

	assert.True(t, analyzer.IsPublic(nil, "public_func", nil))
	assert.False(t, analyzer.IsPublic(nil, "_private_func", nil))
	assert.False(t, analyzer.IsPublic(nil, "__dunder__", nil))
}

func TestSliceConfig_Defaults(t *testing.T) {
	cfg := slicing.DefaultSliceConfig()

	assert.Equal(t, 255, cfg.MaxNameLength)
}

func sliceSource(t *testing.T, fileName, code string) slicing.SliceResult {
	t.Helper()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, fileName), []byte(code), 0644))

	config := slicing.NewLanguageConfig()
	s := slicing.NewSlicer(config, language.NewFactory(config))

	lang, _ := config.ByExtension(filepath.Ext(fileName))
	files := []repository.File{
		repository.NewFile("abc123", fileName, lang.Name(), int64(len(code))),
	}

	result, err := s.Slice(context.Background(), files, tmpDir, slicing.DefaultSliceConfig())
	require.NoError(t, err)
	return result
}

func snippetContents(result slicing.SliceResult) []string {
	var contents []string
	for _, snip := range result.Snippets() {
		contents = append(contents, snip.Content())
	}
	return contents
}

func TestSlicer_PrependsSignatureTypes(t *testing.T) {
	code := `package main

// Greeting is a rendered message.
type Greeting struct {
	Text string
}

func Render(g Greeting) string {
	return g.Text
}
`
	result := sliceSource(t, "greet.go", code)

	var renderContent string
	for _, snip := range result.Snippets() {
		if strings.Contains(snip.Content(), "func Render") {
			renderContent = snip.Content()
		}
	}
	require.NotEmpty(t, renderContent, "Render should produce a snippet")

	typeIdx := strings.Index(renderContent, "type Greeting struct")
	funcIdx := strings.Index(renderContent, "func Render")
	require.GreaterOrEqual(t, typeIdx, 0, "the parameter type declaration is prepended")
	assert.Less(t, typeIdx, funcIdx)
	assert.Contains(t, renderContent[typeIdx:funcIdx], "\n\n", "declarations are blank-line separated")
}

func TestSlicer_EmitsPrivateDeclarations(t *testing.T) {
	code := `package main

func helper() int {
	return 42
}
`
	result := sliceSource(t, "helper.go", code)

	found := false
	for _, snip := range result.Snippets() {
		if strings.Contains(snip.Content(), "func helper") {
			found = true
		}
	}
	assert.True(t, found, "unexported declarations still produce snippets")
}

func TestSlicer_ElidesNestedFunctions(t *testing.T) {
	code := `def outer():
    def inner():
        return 1
    return inner()
`
	result := sliceSource(t, "nested.py", code)

	var outerContent string
	for _, snip := range result.Snippets() {
		if strings.Contains(snip.Content(), "def outer") {
			outerContent = snip.Content()
		}
	}
	require.NotEmpty(t, outerContent)
	assert.Contains(t, outerContent, "{ ... }", "nested named function bodies are collapsed")
	assert.NotContains(t, outerContent, "return 1")

	// The nested function never becomes its own snippet.
	for _, content := range snippetContents(result) {
		if strings.HasPrefix(strings.TrimSpace(content), "def inner") {
			t.Errorf("nested function emitted as its own snippet: %q", content)
		}
	}
}

func TestSlicer_SkipsOverlongNames(t *testing.T) {
	longName := strings.Repeat("x", 300)
	code := "def " + longName + "():\n    pass\n\ndef ok():\n    pass\n"
	result := sliceSource(t, "long.py", code)

	for _, content := range snippetContents(result) {
		assert.NotContains(t, content, longName)
	}

	found := false
	for _, content := range snippetContents(result) {
		if strings.Contains(content, "def ok") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSlicer_PythonMainGuardSnippet(t *testing.T) {
	code := `def run():
    print("running")

if __name__ == "__main__":
    run()
`
	result := sliceSource(t, "script.py", code)

	found := false
	for _, content := range snippetContents(result) {
		if strings.HasPrefix(content, `if __name__ == "__main__":`) {
			found = true
		}
	}
	assert.True(t, found, "the script entry-point block becomes its own snippet")
}
