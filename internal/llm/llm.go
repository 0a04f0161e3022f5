package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
	Answer(ctx context.Context, contextText, question string) (string, error)
}

// SummaryOptions mirror the request fields the service accepts.
type SummaryOptions struct {
	Method string // "extractive" or "abstractive"
	Length string // "short", "medium" or "detailed"
}

const (
	summarySystemPrompt = "You are a helpful summarization assistant."
	answerSystemPrompt  = "You are an assistant that answers questions based on provided context."
)

var lengthPrompts = map[string]string{
	"short":    "Provide a very brief summary in 2-3 sentences.",
	"medium":   "Provide a concise summary in about 1-2 paragraphs.",
	"detailed": "Provide a detailed summary covering all key points.",
}

// BuildSummaryPrompt returns the user prompt for summarizing text.
// Anything other than "extractive" is treated as abstractive.
func BuildSummaryPrompt(text string, opts SummaryOptions) string {
	lengthPrompt := lengthPrompts[opts.Length]
	if opts.Method == "extractive" {
		return fmt.Sprintf("Extract the most important sentences from this article. %s\n\n%s", lengthPrompt, text)
	}
	return fmt.Sprintf("Provide a %s summary of the following article. %s\n\n%s", opts.Length, lengthPrompt, text)
}

// BuildAnswerPrompt returns the user prompt for answering a question.
func BuildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
}

// Truncate cuts s to at most max runes and marks the cut with "...".
// A non-positive max disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
