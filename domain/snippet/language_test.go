package snippet

import (
	"errors"
	"slices"
	"testing"
)

func TestLanguage_ExtensionsForLanguage(t *testing.T) {
	lang := Language{}

	tests := []struct {
		language string
		want     []string
	}{
		{"go", []string{"go"}},
		{"python", []string{"py", "pyw", "pyx", "pxd"}},
		{"javascript", []string{"js", "jsx", "mjs"}},
		{"typescript", []string{"ts"}},
		{"rust", []string{"rs"}},
		{"cpp", []string{"cpp", "cc", "cxx", "hpp"}},
		{"c", []string{"c", "h"}},
		{"Go", []string{"go"}}, // case-insensitive
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			exts, err := lang.ExtensionsForLanguage(tt.language)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(exts, tt.want) {
				t.Errorf("got %v, want %v", exts, tt.want)
			}
		})
	}
}

func TestLanguage_ExtensionsForLanguage_Unsupported(t *testing.T) {
	lang := Language{}
	_, err := lang.ExtensionsForLanguage("brainfuck")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestLanguage_ExtensionsForLanguage_ReturnsCopy(t *testing.T) {
	lang := Language{}
	exts1, _ := lang.ExtensionsForLanguage("python")
	exts1[0] = "MUTATED"

	exts2, _ := lang.ExtensionsForLanguage("python")
	if exts2[0] == "MUTATED" {
		t.Error("ExtensionsForLanguage should return a copy, not the original slice")
	}
}

func TestLanguage_LanguageForExtension(t *testing.T) {
	lang := Language{}

	tests := []struct {
		extension string
		want      string
	}{
		{"go", "go"},
		{"py", "python"},
		{"js", "javascript"},
		{"ts", "typescript"},
		{"tsx", "tsx"},
		{"rs", "rust"},
		{"java", "java"},
		{"cs", "csharp"},
		{"cpp", "cpp"},
		{"c", "c"},
		{"rb", "ruby"},
		{"sh", "bash"},
		{".py", "python"}, // leading dot stripped
		{".PY", "python"}, // case-insensitive
	}
	for _, tt := range tests {
		t.Run(tt.extension, func(t *testing.T) {
			got, err := lang.LanguageForExtension(tt.extension)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LanguageForExtension(%q) = %q, want %q", tt.extension, got, tt.want)
			}
		})
	}
}

func TestLanguage_LanguageForExtension_Unsupported(t *testing.T) {
	lang := Language{}
	_, err := lang.LanguageForExtension("zzz")
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("error = %v, want ErrUnsupportedExtension", err)
	}
}

func TestLanguage_ExtensionToLanguageMap(t *testing.T) {
	m := Language{}.ExtensionToLanguageMap()

	for ext, want := range map[string]string{"go": "go", "py": "python", "rs": "rust"} {
		if m[ext] != want {
			t.Errorf("m[%q] = %q, want %q", ext, m[ext], want)
		}
	}
}

func TestLanguage_SupportedLanguages(t *testing.T) {
	languages := Language{}.SupportedLanguages()

	if len(languages) == 0 {
		t.Fatal("expected at least one supported language")
	}
	if !slices.Contains(languages, "go") {
		t.Error("expected 'go' in supported languages")
	}
}

func TestLanguage_SupportedExtensions(t *testing.T) {
	if len(Language{}.SupportedExtensions()) == 0 {
		t.Fatal("expected at least one supported extension")
	}
}

func TestLanguage_IsLanguageSupported(t *testing.T) {
	lang := Language{}

	if !lang.IsLanguageSupported("go") {
		t.Error("expected go to be supported")
	}
	if !lang.IsLanguageSupported("Go") {
		t.Error("expected Go (uppercase) to be supported")
	}
	if lang.IsLanguageSupported("brainfuck") {
		t.Error("expected brainfuck to not be supported")
	}
}

func TestLanguage_IsExtensionSupported(t *testing.T) {
	lang := Language{}

	if !lang.IsExtensionSupported("go") {
		t.Error("expected go extension to be supported")
	}
	if !lang.IsExtensionSupported(".py") {
		t.Error("expected .py extension to be supported")
	}
	if lang.IsExtensionSupported("zzz") {
		t.Error("expected zzz extension to not be supported")
	}
}

func TestLanguage_ExtensionsWithFallback(t *testing.T) {
	lang := Language{}

	if exts := lang.ExtensionsWithFallback("python"); len(exts) != 4 {
		t.Errorf("expected 4 extensions for python, got %d", len(exts))
	}
	if exts := lang.ExtensionsWithFallback("unknownlang"); !slices.Equal(exts, []string{"unknownlang"}) {
		t.Errorf("expected fallback [\"unknownlang\"], got %v", exts)
	}
}

func TestLanguage_BidirectionalConsistency(t *testing.T) {
	lang := Language{}

	for _, language := range lang.SupportedLanguages() {
		exts, err := lang.ExtensionsForLanguage(language)
		if err != nil {
			t.Errorf("ExtensionsForLanguage(%q) failed: %v", language, err)
			continue
		}
		for _, ext := range exts {
			got, err := lang.LanguageForExtension(ext)
			if err != nil {
				t.Errorf("LanguageForExtension(%q) failed: %v", ext, err)
				continue
			}
			if got != language {
				t.Errorf("LanguageForExtension(%q) = %q, want %q", ext, got, language)
			}
		}
	}
}
