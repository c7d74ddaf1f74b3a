// Package langdetect decides whether a file holds Lua source. Paths with a
// known extension are trusted outright; for everything else it uses
// go-enry (shebang, then classifier) with a few Lua-specific patterns in
// between, so extensionless scripts and exported cartridge code are still
// picked up.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const (
	langLua  = "lua"
	langText = "text"
)

// cartridgeHeader opens every text-format PICO-8 cartridge.
var cartridgeHeader = []byte("pico-8 cartridge")

// IsSourcePath reports whether path looks like Lua or PICO-8 source by
// extension alone.
func IsSourcePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua", ".p8":
		return true
	}
	return false
}

// Detect returns the detected language for a file.
// Returns "text" if detection fails or confidence is low.
func Detect(path string, content []byte) string {
	if IsSourcePath(path) {
		return langLua
	}
	if len(content) == 0 {
		return langText
	}

	// Cartridge header or a PICO-8 shebang settles it immediately.
	if bytes.HasPrefix(bytes.TrimSpace(content), cartridgeHeader) {
		return langLua
	}
	if firstLine := firstLineOf(content); strings.Contains(firstLine, "pico-8") ||
		strings.Contains(firstLine, "pico8") {
		if strings.HasPrefix(firstLine, "#") {
			return langLua
		}
	}

	// Generic shebang detection (e.g. #!/usr/bin/env lua).
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if isLuaByPattern(content) {
		return langLua
	}

	// Fall back to the classifier with common script languages. Only use
	// the result if confidence is high (safe == true).
	candidates := []string{
		"Lua", "Python", "Shell", "JavaScript", "Ruby", "Perl", "C",
	}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return langText
}

// IsLua reports whether the file should go through the fixer.
func IsLua(path string, content []byte) bool {
	return Detect(path, content) == langLua
}

// isLuaByPattern checks for token combinations that are strongly
// indicative of Lua before falling back to the statistical classifier.
func isLuaByPattern(content []byte) bool {
	s := string(content)

	score := 0
	if strings.Contains(s, "local ") {
		score++
	}
	if strings.Contains(s, "function") && strings.Contains(s, "end") {
		score++
	}
	if strings.Contains(s, "--[[") || hasLineComment(s) {
		score++
	}
	if strings.Contains(s, "~=") || strings.Contains(s, "..") {
		score++
	}
	return score >= 2
}

// hasLineComment reports whether any line starts with a Lua -- comment.
func hasLineComment(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			return true
		}
	}
	return false
}

func firstLineOf(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.ToLower(string(content))
}

// normalize converts go-enry language names to lowercase tags.
func normalize(lang string) string {
	return strings.ToLower(lang)
}
