// Package wings is the preprocessor / import resolver: it turns a main
// source file plus its transitively imported units into a single
// ordered line buffer for internal/lexer and internal/compiler to
// assemble.
package wings

import (
	"path/filepath"
	"strings"

	"crucible/internal/vmprogram"
)

const importPrefix = "import "

// FileReader abstracts the file-manager collaborator so wings doesn't
// depend on the filesystem directly.
type FileReader func(path string) (string, error)

// Resolve reads mainPath, expands any `import "path"` directive lines
// found before the first non-import/non-blank/non-comment line,
// recursively, and returns the assembled source as an ordered slice of
// lines. Already-visited files are skipped so import cycles terminate.
func Resolve(mainPath string, read FileReader) ([]string, error) {
	visited := make(map[string]bool)
	return resolve(mainPath, read, visited)
}

func resolve(path string, read FileReader, visited map[string]bool) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, vmprogram.Error{File: path, Message: err.Error(), Kind: vmprogram.KindPreprocessor}
	}
	if visited[abs] {
		return nil, nil
	}
	visited[abs] = true

	text, err := read(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	rawLines := strings.Split(text, "\n")

	var out []string
	inHeader := true
	for _, line := range rawLines {
		trimmed := strings.TrimSpace(line)
		if inHeader && strings.HasPrefix(trimmed, importPrefix) {
			importPath := strings.Trim(strings.TrimPrefix(trimmed, importPrefix), `"`)
			imported, err := resolve(filepath.Join(dir, importPath), read, visited)
			if err != nil {
				return nil, err
			}
			out = append(out, imported...)
			continue
		}
		if inHeader && trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			inHeader = false
		}
		out = append(out, line)
	}

	return out, nil
}
