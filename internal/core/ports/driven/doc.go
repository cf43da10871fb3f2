// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: In-memory document storage with cross-document accessors
//   - DocumentLoader: Reads a document dump from disk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model completions. Without it, decisions fall back
//     to deterministic rules and answers degrade to context dumps.
//   - Decider, AnswerGenerator: External decision-maker and answer synthesis.
//   - PromptStore: User-editable prompt templates.
//   - HistoryStore: Query history persistence.
//   - ToolObserver: Metrics for tool calls and queries.
//   - FileWatcher: Change notification for loaded dumps.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
