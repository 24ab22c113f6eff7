package fragmenter_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/mdtran/internal/fragmenter"
)

// words returns a paragraph of n distinct tokens prefixed with tag.
func words(tag string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", tag, i)
	}
	return strings.Join(parts, " ")
}

func texts(frags []fragmenter.Fragment) []string {
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = f.Text
	}
	return out
}

func TestSplit_ThreeParagraphsExample(t *testing.T) {
	a, b, c := words("a", 100), words("b", 100), words("c", 100)
	text := a + "\n\n" + b + "\n\n" + c

	frags, err := fragmenter.Split(text, 150)
	require.NoError(t, err)
	require.Len(t, frags, 3)

	// 100 + 100 > 150, so every paragraph closes the previous fragment.
	assert.Equal(t, []string{a, b, c}, texts(frags))
}

func TestSplit_GroupsWithinBudget(t *testing.T) {
	a, b, c := words("a", 60), words("b", 60), words("c", 100)
	text := a + "\n\n" + b + "\n\n" + c

	frags, err := fragmenter.Split(text, 150)
	require.NoError(t, err)

	assert.Equal(t, []string{a + "\n\n" + b, c}, texts(frags))
	assert.Equal(t, 120, frags[0].Words)
	assert.Equal(t, 100, frags[1].Words)
}

func TestSplit_SingleParagraph(t *testing.T) {
	frags, err := fragmenter.Split("Hello, world!", 250)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "Hello, world!", frags[0].Text)
	assert.Equal(t, 1, frags[0].Index)
}

func TestSplit_ExactBudgetStaysTogether(t *testing.T) {
	a, b := words("a", 5), words("b", 5)
	frags, err := fragmenter.Split(a+"\n\n"+b, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{a + "\n\n" + b}, texts(frags))
}

func TestSplit_OversizedParagraphPassesThrough(t *testing.T) {
	small, big, tail := words("s", 3), words("x", 40), words("t", 3)
	text := small + "\n\n" + big + "\n\n" + tail

	frags, err := fragmenter.Split(text, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{small, big, tail}, texts(frags))
	assert.Equal(t, 40, frags[1].Words)
}

func TestSplit_OversizedFirstParagraph(t *testing.T) {
	big, tail := words("x", 40), words("t", 3)

	frags, err := fragmenter.Split(big+"\n\n"+tail, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{big, tail}, texts(frags))
	for _, f := range frags {
		assert.NotEmpty(t, f.Text)
	}
}

func TestSplit_BlankParagraphBetweenOversized(t *testing.T) {
	big := words("x", 5)

	// "\n\n\n\n" leaves an empty paragraph between the two; it is kept as
	// its own zero-word fragment so the fragments still cover every paragraph.
	frags, err := fragmenter.Split(big+"\n\n\n\n"+big, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{big, "", big}, texts(frags))
	assert.Equal(t, 0, frags[1].Words)
}

func TestSplit_IndicesAreSequential(t *testing.T) {
	var paras []string
	for i := 0; i < 7; i++ {
		paras = append(paras, words(fmt.Sprintf("p%d_", i), 8))
	}
	frags, err := fragmenter.Split(strings.Join(paras, "\n\n"), 20)
	require.NoError(t, err)
	for i, f := range frags {
		assert.Equal(t, i+1, f.Index)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n", "\t \n"} {
		_, err := fragmenter.Split(text, 250)
		assert.ErrorIs(t, err, fragmenter.ErrEmptyInput, "input %q", text)
	}
}

func TestSplit_InvalidBudget(t *testing.T) {
	_, err := fragmenter.Split("text", 0)
	assert.ErrorIs(t, err, fragmenter.ErrInvalidBudget)

	_, err = fragmenter.Split("text", -3)
	assert.ErrorIs(t, err, fragmenter.ErrInvalidBudget)
}

// randomDocument builds a document with paragraphs of random length, some of
// them larger than any budget used in the property tests below.
func randomDocument(r *rand.Rand) []string {
	n := 1 + r.Intn(30)
	paras := make([]string, n)
	for i := range paras {
		paras[i] = words(fmt.Sprintf("d%d_", i), 1+r.Intn(120))
	}
	return paras
}

func TestSplit_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		paras := randomDocument(r)
		maxWords := 10 + r.Intn(100)

		frags, err := fragmenter.Split(strings.Join(paras, "\n\n"), maxWords)
		require.NoError(t, err)
		require.NotEmpty(t, frags)

		// Order preservation and no paragraph split, duplicated or dropped.
		var rebuilt []string
		for _, f := range frags {
			rebuilt = append(rebuilt, f.Paragraphs()...)
		}
		require.Equal(t, paras, rebuilt)

		for _, f := range frags {
			ps := f.Paragraphs()
			if f.Words > maxWords {
				// Only a lone oversized paragraph may exceed the budget.
				require.Len(t, ps, 1)
				require.Greater(t, fragmenter.WordCount(ps[0]), maxWords)
				continue
			}
			require.Equal(t, fragmenter.WordCount(f.Text), f.Words)
		}
	}
}

func TestSplitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nBody text here."), 0644))

	frags, err := fragmenter.SplitFile(path, 250)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "# Title\n\nBody text here.", frags[0].Text)
}

func TestSplitFile_NotFound(t *testing.T) {
	_, err := fragmenter.SplitFile(filepath.Join(t.TempDir(), "missing.md"), 250)
	assert.ErrorIs(t, err, fragmenter.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "missing.md")
}

func TestSplitFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(path, []byte(" \n\n "), 0644))

	_, err := fragmenter.SplitFile(path, 250)
	assert.ErrorIs(t, err, fragmenter.ErrEmptyInput)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, fragmenter.WordCount(""))
	assert.Equal(t, 3, fragmenter.WordCount("  one\ttwo\nthree "))
}
