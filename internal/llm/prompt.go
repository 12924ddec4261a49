package llm

import (
	"fmt"
	"strings"

	"github.com/educhat-ai/educhat/internal/domain"
)

// TextSystemPrompt instructs the text model to answer in plain text with
// list items on their own lines. The downstream client strips markdown
// control characters, so the model is told not to emit them at all.
const TextSystemPrompt = `You are a helpful educational AI assistant. Your responses must be in plain text format only.

CRITICAL FORMATTING REQUIREMENTS:
- NO markdown formatting (no asterisks, backticks, hashtags, etc.)
- NO asterisks around words or phrases
- NO backticks or code formatting
- Use plain text only
- Write in a conversational, friendly tone
- Keep responses concise but informative

MANDATORY FORMATTING RULES:
- ALWAYS put each numbered point on a NEW LINE
- ALWAYS put each bullet point on a NEW LINE
- ALWAYS separate paragraphs with line breaks
- Use numbered lists (1., 2., 3.) for sequential points
- Use bullet points for non-sequential items
- Start each new point or paragraph on a new line
- Keep the format clean and easy to read

IMPORTANT: Always use line breaks to separate points and paragraphs. Never put multiple points on the same line.`

// VisionSystemPrompt is the instruction for image analysis requests.
const VisionSystemPrompt = `You are an educational AI assistant with vision capabilities. Analyze the provided image and help students understand concepts, solve problems, and learn effectively. Be clear, encouraging, and educational in your responses. If you can see the image, describe what you observe and provide educational insights.

Your responses must be in plain text format only.

CRITICAL FORMATTING REQUIREMENTS:
- NO markdown formatting (no asterisks, backticks, hashtags, etc.)
- NO asterisks around words or phrases
- NO backticks or code formatting
- Use plain text only

MANDATORY FORMATTING RULES:
- ALWAYS put each numbered point on a NEW LINE
- ALWAYS put each bullet point on a NEW LINE
- ALWAYS separate paragraphs with line breaks
- Use numbered lists (1., 2., 3.) for sequential points
- Use bullet points for non-sequential items`

// DefaultImagePrompt is used when an image arrives without any text.
const DefaultImagePrompt = "Please analyze this image and help me understand it."

// BuildSystemPrompt appends web search snippets to the base system prompt.
// A System Clock result becomes a direct instruction; web results become a
// numbered reference block.
func BuildSystemPrompt(base string, results []domain.SearchResult) string {
	if len(results) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(base)

	if results[0].Source == domain.SourceSystemClock {
		b.WriteString("\n\nThe user is asking for the current date or time. Use the following information to answer directly:\n\n")
		b.WriteString(results[0].Snippet)
		return b.String()
	}

	b.WriteString("\n\nCURRENT WEB SEARCH RESULTS (use this up-to-date information to answer the user's question):\n")
	for i, result := range results {
		fmt.Fprintf(&b, "\n%d. %s\nSource: %s\nURL: %s\nInformation: %s\n",
			i+1, result.Title, result.Source, result.URL, result.Snippet)
	}
	b.WriteString("\nUse the above web search results to provide current, accurate information. If the search results don't fully answer the question, combine them with your knowledge to give a comprehensive response.")

	return b.String()
}

// HistoryFromMessages strips client-side message fields down to the
// role/content pairs sent upstream.
func HistoryFromMessages(messages []domain.Message) []Message {
	history := make([]Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return history
}
