package summarizer

import "strings"

const (
	// DefaultInstruction is used when the client supplies no custom prompt.
	DefaultInstruction = "Please provide a clear, structured summary of the following text. Focus on key points, main ideas, and important details."

	// EmptyOutputMessage replaces a blank provider response.
	EmptyOutputMessage = "Unable to generate summary at this time."

	// BusyNotice prefixes the fallback when the provider stayed rate limited.
	BusyNotice = "⚠️ AI service is currently busy. Please try again in a few minutes, or use the fallback summary below.\n\n"

	fallbackWords = 100
	ellipsis      = "..."
)

// Fallback returns the first 100 whitespace-separated tokens of text joined by
// single spaces, followed by "...". The ellipsis is appended even when the
// text was not truncated. It never fails.
func Fallback(text string) string {
	words := strings.Fields(text)
	if len(words) > fallbackWords {
		words = words[:fallbackWords]
	}
	return strings.Join(words, " ") + ellipsis
}

// BuildPrompt joins the instruction and the source text the way every
// provider receives them.
func BuildPrompt(instruction, text string) string {
	return instruction + "\n\nText to summarize:\n" + text
}
