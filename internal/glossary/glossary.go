// Package glossary assembles the reference text handed to the translator
// with every fragment. Terms come from plain-text files in a folder and,
// optionally, from the term table kept in the store.
package glossary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file suffix recognised as a glossary file.
const Extension = ".txt"

var ErrDirectoryNotFound = errors.New("glossary folder does not exist")

// ReadError reports a failure while reading the glossary folder or one of
// its files.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading glossary files: %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Load concatenates the contents of every *.txt regular file directly inside
// dir, in file-name order, each followed by a newline. The result is trimmed.
// An empty dir means no glossary and yields "".
func Load(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return "", &ReadError{Path: dir, Err: err}
	}

	// Entries come back sorted by file name.
	var sb strings.Builder
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		info, err := os.Stat(path)
		if err != nil {
			return "", &ReadError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return "", &ReadError{Path: path, Err: err}
		}
		sb.Write(content)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// Term is a single source → target mapping.
type Term struct {
	Source string
	Target string
}

// Terms renders term pairs as "source = target" lines.
func Terms(terms []Term) string {
	var sb strings.Builder
	for _, t := range terms {
		fmt.Fprintf(&sb, "%s = %s\n", t.Source, t.Target)
	}
	return strings.TrimSpace(sb.String())
}

// Merge joins the non-empty parts with a blank line.
func Merge(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
