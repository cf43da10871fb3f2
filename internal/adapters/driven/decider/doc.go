// Package decider provides LLM-backed implementations of the agent's
// Decider and AnswerGenerator ports.
//
// Both load their templates from a driven.PromptStore, so users can edit
// them under ~/.tabula/prompts/. Neither retries: the agent loop owns
// timeouts and fallbacks.
package decider
