package ast

import (
	"path/filepath"
	"strings"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangTsx        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// extToLanguage is the fixed extension lookup table. Extensions without a
// registered adapter still map to a concrete id so that skip decisions and
// error messages can name the language.
var extToLanguage = map[string]Language{
	"go":  LangGo,
	"py":  LangPython,
	"pyi": LangPython,
	"rs":  LangRust,
	"ts":  LangTypeScript,
	"mts": LangTypeScript,
	"cts": LangTypeScript,
	"tsx": LangTsx,
	"js":  LangJavaScript,
	"mjs": LangJavaScript,
	"cjs": LangJavaScript,
	"jsx": LangJavaScript,
}

// LanguageFromExtension maps the text after a file name's final dot to a
// language id. Unmapped extensions yield LangUnknown.
func LanguageFromExtension(ext string) Language {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return LangUnknown
}

// LanguageFromPath maps a file path to a language id via its extension.
func LanguageFromPath(path string) Language {
	return LanguageFromExtension(filepath.Ext(path))
}

// DisplayName returns a human-readable name for the language.
func (l Language) DisplayName() string {
	switch l {
	case LangGo:
		return "Go"
	case LangPython:
		return "Python"
	case LangRust:
		return "Rust"
	case LangTypeScript:
		return "TypeScript"
	case LangTsx:
		return "TSX"
	case LangJavaScript:
		return "JavaScript"
	default:
		return "Unknown"
	}
}
