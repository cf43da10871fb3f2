package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptDecideSystem is the system prompt for the decision-maker.
	// This prompt has no format placeholders.
	PromptDecideSystem = "decide_system"

	// PromptDecide asks for the next step. Placeholders, in order:
	// %s tool catalogue, %s gathered context, %s question.
	PromptDecide = "decide"

	// PromptAnswer synthesises the final answer. Placeholders, in order:
	// %s question, %s gathered context.
	PromptAnswer = "answer"
)

// PromptPlaceholders is the number of %s verbs each well-known prompt
// must contain. A customised prompt with a different count is rejected.
var PromptPlaceholders = map[string]int{
	PromptDecideSystem: 0,
	PromptDecide:       3,
	PromptAnswer:       2,
}
