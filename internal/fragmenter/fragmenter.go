// Package fragmenter splits a document into translatable fragments. A
// fragment is a run of consecutive paragraphs whose combined word count stays
// within a budget. Paragraphs are never split: a paragraph that alone exceeds
// the budget becomes a fragment of its own.
package fragmenter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	// Separator delimits paragraphs in the source and joins them in a fragment.
	Separator = "\n\n"

	// DefaultMaxWords is the word budget used when none is configured.
	DefaultMaxWords = 250
)

var (
	ErrEmptyInput     = errors.New("input document is empty")
	ErrSourceNotFound = errors.New("source file not found")
	ErrInvalidBudget  = errors.New("max words must be positive")
)

// Fragment is one unit of translation. Index is 1-based and follows document
// order.
type Fragment struct {
	Index int
	Text  string
	Words int
}

// Paragraphs returns the paragraphs the fragment was built from.
func (f Fragment) Paragraphs() []string {
	return strings.Split(f.Text, Separator)
}

// WordCount returns the number of whitespace-delimited tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Split partitions text into fragments of at most maxWords words each.
// Paragraphs are appended to the running fragment while the running count
// plus the paragraph's count fits the budget; otherwise the running fragment
// is emitted and a new one starts with the paragraph.
func Split(text string, maxWords int) ([]Fragment, error) {
	if maxWords <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBudget, maxWords)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var (
		fragments []Fragment
		current   []string
		count     int
	)

	emit := func() {
		fragments = append(fragments, Fragment{
			Index: len(fragments) + 1,
			Text:  strings.Join(current, Separator),
			Words: count,
		})
	}

	for _, paragraph := range strings.Split(text, Separator) {
		words := WordCount(paragraph)
		if count+words <= maxWords {
			current = append(current, paragraph)
			count += words
			continue
		}
		// An oversized first paragraph arrives with nothing accumulated;
		// there is no fragment to close yet.
		if len(current) > 0 {
			emit()
		}
		current = []string{paragraph}
		count = words
	}

	if len(current) > 0 {
		emit()
	}

	return fragments, nil
}

// SplitFile reads the document at path and splits it with Split.
func SplitFile(path string, maxWords int) ([]Fragment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return Split(string(content), maxWords)
}
