package ai

import "fmt"

// PromptTemplates contains the prompt templates used for verification
var PromptTemplates = struct {
	Question string
}{
	Question: `You are a careful news researcher. Read the article below and write ONE short, neutral search question that would let someone check its central factual claim against mainstream reporting.

Respond with only the question, no preamble, no quotes.

Title: %s

Article:
%s`,
}

// LengthConstraint is appended to every generated question before it is asked
const LengthConstraint = "in less than 200 words"

// BuildQuestionPrompt embeds the article title and body verbatim
func BuildQuestionPrompt(title, body string) string {
	return fmt.Sprintf(PromptTemplates.Question, title, body)
}
