// Package prompt builds the ordered message sequence handed to the
// generation backend.
package prompt

import (
	"fmt"

	"github.com/Dibendu094/Chatbot/llm"
	"github.com/Dibendu094/Chatbot/retrieval"
)

// History window sizes per channel. Older turns are retained by the
// caller for display but excluded from the model call to bound cost and
// latency.
const (
	ChatHistoryWindow  = 10
	VoiceHistoryWindow = 6
)

// ChatPersona is the system persona for the HTTP channel.
const ChatPersona = "You are Apex, a world-class AI assistant with a knowledge cutoff of 2022. " +
	"For events, information, or data after 2022, you MUST rely on the provided context from search results and Wikipedia. " +
	"IMPORTANT: Vary your response style based on the query. " +
	"Do not always use the same structure. Switch between:\n" +
	"- **Direct & Precise**: For simple questions.\n" +
	"- **Structured & Analytical**: Using headers and lists for complex guides.\n" +
	"- **Conversational & Prosaic**: For creative or philosophical discussions.\n" +
	"- **Step-by-Step Tutorial**: For 'how-to' requests.\n" +
	"\n\nSTYLE & PERSONA GUIDELINES:\n" +
	"1. **Tone**: Professional, clear, and adaptive.\n" +
	"2. **Structure**: Use Markdown. Vary the use of headers (###) and bolding so you don't look repetitive.\n" +
	"3. **Reasoning**: Break down thinking when helpful.\n" +
	"4. **Formatting**: Correct language tags for code, tables for data.\n" +
	"5. **Citations**: Natural integration of sources if provided [1], [2].\n" +
	"6. **Conciseness**: Avoid redundant conversational filler.\n" +
	"7. **Knowledge Limitation**: If asked about post-2022 events without context, clearly state your knowledge cutoff and suggest the user ask for updated information."

const voicePersonaTemplate = "You are Apex, a friendly and advanced AI assistant.\n" +
	"You are bilingual and can speak fluently in both English and Hindi (or a mix/Hinglish).\n" +
	"Adapt your response language to match the user's language.\n" +
	"If the user speaks Hindi, reply in Hindi (using Roman script or Devanagari as appropriate for speech synthesis responsiveness).\n" +
	"Keep your responses concise, natural, and conversational.\n" +
	"Do not use markdown.\n" +
	"Current user emotion: %s"

// VoicePersona is the spoken-channel system persona, parameterized by
// the session's current emotion.
func VoicePersona(emotion string) string {
	return fmt.Sprintf(voicePersonaTemplate, emotion)
}

// Assemble builds the prompt messages for one turn: exactly one system
// turn, the most recent window of history in original order, and
// exactly one final user turn. When a context block is present the user
// turn embeds it ahead of the question.
func Assemble(persona string, history []llm.ChatMessage, userText string, block retrieval.Block, window int) []llm.ChatMessage {
	windowed := history
	if len(windowed) > window {
		windowed = windowed[len(windowed)-window:]
	}

	messages := make([]llm.ChatMessage, 0, len(windowed)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: persona})
	messages = append(messages, windowed...)

	content := userText
	if !block.Empty() {
		content = fmt.Sprintf("Context Information:\n%s\n\nUser Question: %s", block.Render(), userText)
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: content})

	return messages
}
