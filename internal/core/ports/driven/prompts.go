package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system prompt for grounded answers.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer wraps the retrieved context and the question.
	// The template expects two %s placeholders: context, then question.
	PromptAnswer = "answer"

	// PromptAnswerNoContext is used when retrieval produced nothing.
	// The template expects one %s placeholder for the question.
	PromptAnswerNoContext = "answer_no_context"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
