package llm

import llmclient "bakerybot/internal/llmClient"

// LLMClient is re-exported so callers wiring middleware only import llm.
type LLMClient = llmclient.LLMClient

// Phases tag model calls in the context for hooks and logs.
const (
	PhaseRoute   = "route"
	PhaseCompose = "compose"
)
