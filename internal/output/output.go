// Package output manages the translated document: it is removed before a
// run and then grows by one appended fragment per successful translation.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/valpere/mdtran/internal/markdown"
)

// Separator follows every appended fragment.
const Separator = "\n\n"

const (
	permFile = 0o644
	permDir  = 0o755
)

// Reset deletes the document at path if it exists. It reports whether a file
// was removed.
func Reset(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to remove existing output file: %w", err)
}

// Append writes text followed by a blank line to the end of the document at
// path, creating it and its parent directory when needed. The file is synced
// and closed before Append returns.
func Append(path, text string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, permDir); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permFile)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if _, err := f.WriteString(text + Separator); err != nil {
		return fmt.Errorf("failed to append to output file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return nil
}

// RenderHTML converts the Markdown document at mdPath into a standalone HTML
// page at htmlPath.
func RenderHTML(mdPath, htmlPath string) error {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return fmt.Errorf("failed to read output file: %w", err)
	}
	if dir := filepath.Dir(htmlPath); dir != "." {
		if err := os.MkdirAll(dir, permDir); err != nil {
			return fmt.Errorf("failed to create html directory: %w", err)
		}
	}
	if err := os.WriteFile(htmlPath, []byte(markdown.ToPage(md, filepath.Base(mdPath))), permFile); err != nil {
		return fmt.Errorf("failed to write html file: %w", err)
	}
	return nil
}
