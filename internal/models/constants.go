package models

// HistoryTail is how many trailing conversation turns are rendered
// into the grounding prompt.
const HistoryTail = 8

var (
	GroundingPromptTemplate = `You are a cybersecurity and fraud intelligence assistant for banking. Answer clearly and accurately using ONLY the provided context whenever possible. If information is missing, explicitly state what is missing and suggest safe next steps.

Conversation history:
%s

Context:
%s

User question: %s

Response format: concise explanation, risk level if relevant, and practical actions.`

	ContextBlockTemplate = "Source: %s\nContent: %s"
)
