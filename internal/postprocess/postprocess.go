// Package postprocess removes common LLM artifacts from translated Markdown.
//
// Every chat-backed translation service (OpenAI, OpenRouter, Ollama) runs the
// raw completion through Clean before handing it to the pipeline.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Preamble removal ("Here is the translation:")
//  3. Markdown fence unwrapping
//
// Quotes around the whole reply are kept: in Markdown they are content.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = unwrapMarkdownFence(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// RE2 has no backreferences, so each tag pair is listed.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: preambles ---

// echoPatterns are anchored to the start and require a colon, so a sentence
// that merely mentions a translation is left alone.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [translated] translation [into Polish]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:refined |polished |translated )?(?:translation|text|markdown)(?: (?:in|into|to) [\p{L} ]+)?\s*:`),
	// "[The] [translation|translated text]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:refined |polished )?(?:translation|translated text)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] translation:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the| your)? (?:refined |polished |translated )?(?:translation|text|markdown)(?: (?:in|into|to) [\p{L} ]+)?\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: fence unwrapping ---

// markdownFenceRe matches a reply that is nothing but a single fenced block
// tagged as Markdown. Untagged or code-language fences are real content.
var markdownFenceRe = regexp.MustCompile("(?is)^```(?:markdown|md)[ \t]*\n(.*?)\n?```$")

func unwrapMarkdownFence(text string) string {
	m := markdownFenceRe.FindStringSubmatch(text)
	if m == nil || strings.Contains(m[1], "\n```\n") {
		return text
	}
	return strings.TrimSpace(m[1])
}
