package eval

import "strings"

const promptHeader = `You are a veteran sales coach reviewing a mock sales call between a sales
representative and an AI customer. Evaluate the representative's
performance and reply in Markdown with exactly these sections:

1. **Strengths**
2. **Areas to improve** (include concrete alternative phrasings)
3. **Likelihood of closing** (%)
4. **Overall score** (/100)`

// BuildPrompt assembles the coaching request for one conversation. When
// audio is attached, the model is told to weigh delivery as well as
// content.
func BuildPrompt(transcript string, hasAudio bool) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	if hasAudio {
		b.WriteString("\n\nA recording of the call is attached. Consider pacing, tone, and delivery in addition to the content.")
	}

	if strings.TrimSpace(transcript) != "" {
		b.WriteString("\n\n--- Conversation log ---\n")
		b.WriteString(transcript)
		b.WriteString("\n------------------------")
	}

	return b.String()
}
