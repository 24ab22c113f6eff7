// Package detector guesses the language of a source document so a run can
// record what it translated from.
package detector

import (
	"regexp"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// sampleRunes bounds how much of a document is fed to the detector.
const sampleRunes = 4000

var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]*`")
	linkTargetRe = regexp.MustCompile(`\]\([^)]*\)`)
	htmlTagRe    = regexp.MustCompile(`<[^>\n]+>`)
	markupRe     = regexp.MustCompile(`(?m)^\s*(?:#{1,6}|>|[-*+]|\d+\.)\s+`)
)

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the language of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectDocument is DetectISO for Markdown: code, link targets and markup
// are removed and only the beginning of the document is examined.
func (d *Detector) DetectDocument(md string) (string, bool) {
	return d.DetectISO(Sample(md))
}

// Sample returns the prose of a Markdown document, capped in length.
func Sample(md string) string {
	text := fencedCodeRe.ReplaceAllString(md, " ")
	text = inlineCodeRe.ReplaceAllString(text, " ")
	text = linkTargetRe.ReplaceAllString(text, "]")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = markupRe.ReplaceAllString(text, "")

	if runes := []rune(text); len(runes) > sampleRunes {
		text = string(runes[:sampleRunes])
	}
	return strings.TrimSpace(text)
}
