package language

import (
	"github.com/kodit-ai/kodit/infrastructure/slicing"
)

// Factory maps file extensions to language analyzers.
type Factory struct {
	byExtension map[string]slicing.Analyzer
}

// NewFactory creates a Factory covering every language in the config.
func NewFactory(config slicing.LanguageConfig) *Factory {
	factory := &Factory{
		byExtension: make(map[string]slicing.Analyzer),
	}

	register := func(name string, build func(slicing.Language) slicing.Analyzer) {
		lang, ok := config.ByName(name)
		if !ok {
			return
		}
		analyzer := build(lang)
		for _, ext := range lang.Extensions() {
			factory.byExtension[ext] = analyzer
		}
	}

	register("python", func(l slicing.Language) slicing.Analyzer { return NewPython(l) })
	register("go", func(l slicing.Language) slicing.Analyzer { return NewGo(l) })
	register("java", func(l slicing.Language) slicing.Analyzer { return NewJava(l) })
	register("c", func(l slicing.Language) slicing.Analyzer { return NewC(l) })
	// C and C++ share the slicing-relevant node types.
	register("cpp", func(l slicing.Language) slicing.Analyzer { return NewC(l) })
	register("rust", func(l slicing.Language) slicing.Analyzer { return NewRust(l) })
	register("javascript", func(l slicing.Language) slicing.Analyzer { return NewJavaScript(l, ".js") })
	register("typescript", func(l slicing.Language) slicing.Analyzer { return NewJavaScript(l, ".ts") })
	register("tsx", func(l slicing.Language) slicing.Analyzer { return NewJavaScript(l, ".tsx") })
	register("csharp", func(l slicing.Language) slicing.Analyzer { return NewCSharp(l) })

	return factory
}

// ByExtension returns the analyzer for a file extension.
func (f *Factory) ByExtension(ext string) (slicing.Analyzer, bool) {
	analyzer, ok := f.byExtension[ext]
	return analyzer, ok
}

var _ slicing.AnalyzerFactory = (*Factory)(nil)
