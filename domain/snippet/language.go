package snippet

import (
	"errors"
	"fmt"
	"strings"
)

// languageExtensions maps language names to their file extensions.
// The first extension listed is the canonical one.
var languageExtensions = map[string][]string{
	"python":     {"py", "pyw", "pyx", "pxd"},
	"go":         {"go"},
	"javascript": {"js", "jsx", "mjs"},
	"typescript": {"ts"},
	"tsx":        {"tsx"},
	"java":       {"java"},
	"csharp":     {"cs"},
	"cpp":        {"cpp", "cc", "cxx", "hpp"},
	"c":          {"c", "h"},
	"rust":       {"rs"},
	"php":        {"php"},
	"ruby":       {"rb"},
	"swift":      {"swift"},
	"kotlin":     {"kt", "kts"},
	"scala":      {"scala"},
	"r":          {"r", "R"},
	"matlab":     {"m"},
	"perl":       {"pl", "pm"},
	"bash":       {"sh", "bash"},
	"powershell": {"ps1"},
	"sql":        {"sql"},
	"yaml":       {"yml", "yaml"},
	"json":       {"json"},
	"xml":        {"xml"},
	"markdown":   {"md", "markdown"},
}

// extensionLanguage is the reverse index, keyed by lowercased extension.
var extensionLanguage = func() map[string]string {
	index := make(map[string]string)
	for language, extensions := range languageExtensions {
		for _, ext := range extensions {
			index[strings.ToLower(ext)] = language
		}
	}
	return index
}()

// ErrUnsupportedLanguage indicates an unsupported programming language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrUnsupportedExtension indicates an unsupported file extension.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Language provides bidirectional mapping between programming languages
// and their file extensions.
type Language struct{}

// ExtensionsForLanguage returns the file extensions for a language.
func (Language) ExtensionsForLanguage(language string) ([]string, error) {
	extensions, ok := languageExtensions[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
	result := make([]string, len(extensions))
	copy(result, extensions)
	return result, nil
}

// LanguageForExtension returns the language for a file extension.
// A leading dot is accepted and the match is case-insensitive.
func (Language) LanguageForExtension(extension string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")
	language, ok := extensionLanguage[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, extension)
	}
	return language, nil
}

// ExtensionToLanguageMap returns a map of extensions to languages.
func (Language) ExtensionToLanguageMap() map[string]string {
	result := make(map[string]string)
	for language, extensions := range languageExtensions {
		for _, ext := range extensions {
			result[ext] = language
		}
	}
	return result
}

// SupportedLanguages returns all supported programming languages.
func (Language) SupportedLanguages() []string {
	result := make([]string, 0, len(languageExtensions))
	for lang := range languageExtensions {
		result = append(result, lang)
	}
	return result
}

// SupportedExtensions returns all supported file extensions.
func (Language) SupportedExtensions() []string {
	var result []string
	for _, extensions := range languageExtensions {
		result = append(result, extensions...)
	}
	return result
}

// IsLanguageSupported checks if a language is supported.
func (Language) IsLanguageSupported(language string) bool {
	_, ok := languageExtensions[strings.ToLower(language)]
	return ok
}

// IsExtensionSupported checks if a file extension is supported.
func (l Language) IsExtensionSupported(extension string) bool {
	_, err := l.LanguageForExtension(extension)
	return err == nil
}

// ExtensionsWithFallback returns extensions for a language, or the
// lowercased language name itself when the language is unknown.
func (l Language) ExtensionsWithFallback(language string) []string {
	if extensions, err := l.ExtensionsForLanguage(language); err == nil {
		return extensions
	}
	return []string{strings.ToLower(language)}
}
